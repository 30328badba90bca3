package domain

import "strings"

type PaymentMethod string

const (
	PaymentMethodMpesa    PaymentMethod = "mpesa"
	PaymentMethodOrange   PaymentMethod = "orange"
	PaymentMethodAirtel   PaymentMethod = "airtel"
	PaymentMethodAfricell PaymentMethod = "africell"
)

const (
	PlaceholderRecipient = "[NUMERO]"
	PlaceholderAmount    = "[MONTANT]"
)

type PaymentChannel struct {
	ID           PaymentMethod `json:"id"`
	Name         string        `json:"name"`
	USSD         string        `json:"ussd"`
	Instructions []string      `json:"instructions"`
}

var paymentChannels = []PaymentChannel{
	{
		ID:   PaymentMethodMpesa,
		Name: "M-Pesa",
		USSD: "*1122#",
		Instructions: []string{
			"Composez *1122#",
			"Choisissez votre compte (CDF ou USD)",
			"Sélectionnez 'Envoyer de l'argent'",
			"Entrez le numéro : [NUMERO]",
			"Entrez le montant : [MONTANT] CDF",
			"Confirmez avec votre code PIN",
			"Vous recevrez votre token par email dans les 12h",
		},
	},
	{
		ID:   PaymentMethodOrange,
		Name: "Orange Money",
		USSD: "*144#",
		Instructions: []string{
			"Composez *144#",
			"Choisissez votre compte (Franc ou Dollar)",
			"Sélectionnez 'Je transfère l'argent' (option 1)",
			"Choisissez 'Transfert National' (option 1)",
			"Entrez le numéro : [NUMERO]",
			"Entrez le montant : [MONTANT] CDF",
			"Confirmez avec votre code secret",
			"Vous recevrez votre token par email dans les 12h",
		},
	},
	{
		ID:   PaymentMethodAirtel,
		Name: "Airtel Money",
		USSD: "*501#",
		Instructions: []string{
			"Composez *501#",
			"Choisissez votre devise (1 pour USD ou 2 pour CDF)",
			"Sélectionnez 'Envoi Argent' (option 1)",
			"Choisissez 'Vers Airtel Money' (option 1)",
			"Entrez le numéro : [NUMERO]",
			"Entrez le montant : [MONTANT] CDF",
			"Confirmez avec votre PIN",
			"Vous recevrez votre token par email dans les 12h",
		},
	},
	{
		ID:   PaymentMethodAfricell,
		Name: "Africell Money",
		USSD: "*1020#",
		Instructions: []string{
			"Composez *1020#",
			"Choisissez votre devise (USD ou CDF)",
			"Sélectionnez 'Envoyer de l'argent'",
			"Entrez le numéro : [NUMERO]",
			"Entrez le montant : [MONTANT] CDF",
			"Confirmez avec votre PIN",
			"Vous recevrez votre token par email dans les 12h",
		},
	},
}

func PaymentChannels() []PaymentChannel {
	out := make([]PaymentChannel, len(paymentChannels))
	copy(out, paymentChannels)
	return out
}

func (m PaymentMethod) Channel() (PaymentChannel, bool) {
	for _, c := range paymentChannels {
		if c.ID == m {
			return c, true
		}
	}
	return PaymentChannel{}, false
}

func (m PaymentMethod) Valid() bool {
	_, ok := m.Channel()
	return ok
}

// RenderInstructions fills the recipient and amount placeholders of every step.
func (c PaymentChannel) RenderInstructions(recipient, amount string) []string {
	r := strings.NewReplacer(PlaceholderRecipient, recipient, PlaceholderAmount, amount)
	lines := make([]string, len(c.Instructions))
	for i, line := range c.Instructions {
		lines[i] = r.Replace(line)
	}
	return lines
}
