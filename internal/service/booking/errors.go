package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("booking session not found")
	ErrWrongStep       = errors.New("operation not available at this step")
	ErrBusy            = errors.New("a request is already in progress")

	ErrUnknownTier          = errors.New("unknown ticket type")
	ErrNoTickets            = errors.New("no ticket selected")
	ErrCustomerIncomplete   = errors.New("name, phone and payment method are required")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrTokenRequired        = errors.New("token is required")

	// ErrServerUnreachable covers transport failures and answers the client cannot use.
	ErrServerUnreachable = errors.New("server unreachable")

	errOrderUnreachable = fmt.Errorf("create order: %w", ErrServerUnreachable)
	errTokenUnreachable = fmt.Errorf("verify token: %w", ErrServerUnreachable)
)

// OrderRejectedError is a refusal of the order by the API.
type OrderRejectedError struct {
	StatusCode int
	Message    string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected (%d): %s", e.StatusCode, e.Message)
}

type TokenInvalidError struct {
	Message string
}

func (e *TokenInvalidError) Error() string {
	return "invalid token: " + e.Message
}

// ArtifactError means the ticket could not be produced; the token stays usable.
type ArtifactError struct {
	Err error
}

func (e *ArtifactError) Error() string {
	return "generate ticket: " + e.Err.Error()
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

const (
	IconError   = "error"
	IconWarning = "warning"
	IconSuccess = "success"
)

// Dialog is the modal the front end shows for an outcome.
type Dialog struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

var TicketDownloaded = Dialog{
	Icon:    IconSuccess,
	Title:   "Billet téléchargé",
	Message: "Votre billet PDF a été téléchargé avec succès.",
}

func DialogFor(err error) Dialog {
	var (
		rejected *OrderRejectedError
		invalid  *TokenInvalidError
		artifact *ArtifactError
	)

	switch {
	case err == nil:
		return Dialog{}
	case errors.As(err, &rejected):
		return Dialog{Icon: IconError, Title: "Commande impossible", Message: "Erreur lors de la commande."}
	case errors.Is(err, errOrderUnreachable):
		return Dialog{Icon: IconError, Title: "Erreur serveur", Message: "Impossible de créer la commande pour le moment."}
	case errors.As(err, &invalid):
		msg := invalid.Message
		if msg == "" {
			msg = "Token invalide"
		}
		return Dialog{Icon: IconError, Title: "Token invalide", Message: msg}
	case errors.Is(err, errTokenUnreachable):
		return Dialog{Icon: IconError, Title: "Erreur serveur", Message: "Impossible de valider le token pour le moment."}
	case errors.As(err, &artifact):
		return Dialog{Icon: IconError, Title: "Erreur", Message: "Impossible de générer votre billet. Votre token reste valable, réessayez."}
	case errors.Is(err, ErrServerUnreachable):
		return Dialog{Icon: IconError, Title: "Erreur serveur", Message: "Le serveur est injoignable pour le moment."}
	case errors.Is(err, ErrTokenRequired):
		return Dialog{Icon: IconWarning, Title: "Token requis", Message: "Veuillez entrer votre token."}
	case errors.Is(err, ErrNoTickets):
		return Dialog{Icon: IconWarning, Title: "Aucun billet", Message: "Sélectionnez au moins un billet."}
	case errors.Is(err, ErrCustomerIncomplete):
		return Dialog{Icon: IconWarning, Title: "Informations manquantes", Message: "Le nom, le téléphone et le moyen de paiement sont obligatoires."}
	case errors.Is(err, ErrUnknownPaymentMethod):
		return Dialog{Icon: IconWarning, Title: "Moyen de paiement", Message: "Ce moyen de paiement n'est pas disponible."}
	case errors.Is(err, ErrUnknownTier):
		return Dialog{Icon: IconWarning, Title: "Billet inconnu", Message: "Ce type de billet n'existe pas pour ce spectacle."}
	case errors.Is(err, ErrBusy):
		return Dialog{Icon: IconWarning, Title: "Patientez", Message: "Une opération est déjà en cours."}
	case errors.Is(err, ErrIllegalTransition), errors.Is(err, ErrWrongStep):
		return Dialog{Icon: IconWarning, Title: "Action impossible", Message: "Cette action n'est pas disponible à cette étape."}
	case errors.Is(err, ErrSessionNotFound):
		return Dialog{Icon: IconWarning, Title: "Session expirée", Message: "Votre réservation a expiré, veuillez recommencer."}
	}
	return Dialog{Icon: IconError, Title: "Erreur", Message: "Une erreur inattendue est survenue."}
}
