package ticket

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockImageLoader struct {
	mock.Mock
}

func (m *mockImageLoader) Load(ctx context.Context, url string) (image.Image, error) {
	args := m.Called(ctx, url)
	if img := args.Get(0); img != nil {
		return img.(image.Image), args.Error(1)
	}
	return nil, args.Error(1)
}

func poster() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: 40, B: uint8(y * 2), A: 0xff})
		}
	}
	return img
}

func testEvent() domain.Event {
	date, _ := domain.ParseDate("2024-12-14")
	return domain.Event{
		ID:    "ev1",
		Title: "Rire Sans Frontières",
		Date:  date,
		Time:  "20:00",
		Venue: "Salle des Fêtes",
		City:  "Kinshasa",
		Image: "http://img/poster.jpg",
		Tickets: []domain.TicketTier{
			{Type: "Standard", Price: 15000, Currency: "CDF", Available: 50, Total: 100},
			{Type: "VIP", Price: 30000, Currency: "CDF", Available: 10, Total: 20},
		},
	}
}

func testOrder() domain.Order {
	return domain.Order{
		ID:            "6650c0ffee1234abcd",
		EventID:       "ev1",
		CustomerName:  "Jean Mukendi",
		CustomerPhone: "+243810000000",
		Tickets: []domain.OrderLine{
			{Type: "Standard", Quantity: 2, Price: 15000},
			{Type: "VIP", Quantity: 1, Price: 30000},
		},
		TotalAmount:   60000,
		PaymentMethod: domain.PaymentMethodMpesa,
		PaymentStatus: domain.PaymentStatusValidated,
		Token:         "EL-999999",
	}
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0 CDF"},
		{in: 500, want: "500 CDF"},
		{in: 30000, want: "30,000 CDF"},
		{in: 1250000, want: "1,250,000 CDF"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatAmount(tc.in))
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "samedi 14 décembre 2024", FormatDate(time.Date(2024, time.December, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "lundi 3 février 2025", FormatDate(time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Billet-Rire-Sans-Frontières-EL-999999.pdf", Filename("Rire Sans Frontières", "EL-999999"))
	assert.Equal(t, "Billet-Gala-du-Rire-EL-1.pdf", Filename("Gala  du\tRire", "EL-1"))
}

func TestBuildContent(t *testing.T) {
	c := buildContent(testOrder(), testEvent())

	assert.Equal(t, "RIRE SANS FRONTIÈRES", c.Title)
	assert.Equal(t, "samedi 14 décembre 2024", c.Date)
	assert.Equal(t, "Salle des Fêtes, Kinshasa", c.Place)
	assert.Equal(t, "Ref: #1234ABCD", c.Ref)
	assert.Equal(t, "6650c0ffee1234abcd", c.QRPayload)
	assert.Equal(t, "60,000 CDF", c.Total)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, lineItem{Quantity: "2x", Type: "Standard", Amount: "30,000 CDF"}, c.Lines[0])
	assert.Equal(t, lineItem{Quantity: "1x", Type: "VIP", Amount: "30,000 CDF"}, c.Lines[1])
}

func TestBuildContent_SummarizesExtraLines(t *testing.T) {
	order := testOrder()
	order.Tickets = []domain.OrderLine{
		{Type: "Standard", Quantity: 1, Price: 10000},
		{Type: "VIP", Quantity: 1, Price: 20000},
		{Type: "VVIP", Quantity: 2, Price: 50000},
		{Type: "Table", Quantity: 1, Price: 100000},
	}

	c := buildContent(order, testEvent())

	require.Len(t, c.Lines, maxLineRows)
	assert.Equal(t, lineItem{Quantity: "3x", Type: "autres (2 types)", Amount: "200,000 CDF"}, c.Lines[2])
	assert.Equal(t, "230,000 CDF", c.Total)
}

func TestQRCode(t *testing.T) {
	img, err := QRCode("6650c0ffee1234abcd", 4)
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())
	assert.Zero(t, b.Dx()%4)
	// quiet zone
	r, g, bl, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, bl})

	_, err = QRCode("", 4)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// modules samples the centre pixel of every module of a rendered symbol.
func modules(img image.Image, moduleSize int) [][]bool {
	b := img.Bounds()
	n := b.Dx() / moduleSize
	grid := make([][]bool, n)
	for y := 0; y < n; y++ {
		grid[y] = make([]bool, n)
		for x := 0; x < n; x++ {
			r, _, _, _ := img.At(b.Min.X+x*moduleSize+moduleSize/2, b.Min.Y+y*moduleSize+moduleSize/2).RGBA()
			grid[y][x] = r < 0x8000
		}
	}
	return grid
}

func TestQRCode_EncodesRawOrderID(t *testing.T) {
	const orderID = "6650c0ffee1234abcd"
	img, err := QRCode(orderID, 4)
	require.NoError(t, err)

	want, err := qrcode.New(orderID, qrcode.Medium)
	require.NoError(t, err)
	bitmap := want.Bitmap()
	require.Equal(t, len(bitmap)*4, img.Bounds().Dx())
	assert.Equal(t, bitmap, modules(img, 4))

	other, err := qrcode.New("Ref: #1234ABCD", qrcode.Medium)
	require.NoError(t, err)
	assert.NotEqual(t, other.Bitmap(), modules(img, 4))
}

func TestGenerator_Generate(t *testing.T) {
	loader := new(mockImageLoader)
	loader.On("Load", mock.Anything, "http://img/poster.jpg").Return(poster(), nil)
	gen := NewGenerator(loader, time.Second)

	first, err := gen.Generate(context.Background(), testOrder(), testEvent())
	require.NoError(t, err)
	assert.Equal(t, "Billet-Rire-Sans-Frontières-EL-999999.pdf", first.Filename)
	assert.Equal(t, "6650c0ffee1234abcd", first.OrderID)
	assert.True(t, bytes.HasPrefix(first.PDF, []byte("%PDF")))

	// every call renders a fresh artifact
	second, err := gen.Generate(context.Background(), testOrder(), testEvent())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(second.PDF, []byte("%PDF")))
	assert.Equal(t, first.Filename, second.Filename)

	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestGenerator_Generate_ImageUnavailable(t *testing.T) {
	loader := new(mockImageLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: timeout"))

	artifact, err := NewGenerator(loader, 50*time.Millisecond).Generate(context.Background(), testOrder(), testEvent())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(artifact.PDF, []byte("%PDF")))
}

func TestGenerator_Generate_WithoutLoader(t *testing.T) {
	artifact, err := NewGenerator(nil, 0).Generate(context.Background(), testOrder(), testEvent())

	require.NoError(t, err)
	assert.NotEmpty(t, artifact.PDF)
}

func TestGenerator_Generate_InvalidInput(t *testing.T) {
	gen := NewGenerator(nil, 0)

	testCases := []struct {
		name  string
		order func(o *domain.Order)
		event func(e *domain.Event)
	}{
		{name: "no order id", order: func(o *domain.Order) { o.ID = "" }, event: func(e *domain.Event) {}},
		{name: "no token", order: func(o *domain.Order) { o.Token = "" }, event: func(e *domain.Event) {}},
		{name: "no title", order: func(o *domain.Order) {}, event: func(e *domain.Event) { e.Title = " " }},
		{name: "no date", order: func(o *domain.Order) {}, event: func(e *domain.Event) { e.Date = domain.Date{} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, event := testOrder(), testEvent()
			tc.order(&order)
			tc.event(&event)

			_, err := gen.Generate(context.Background(), order, event)

			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDirSink_Save(t *testing.T) {
	dir := t.TempDir()
	sink := NewDirSink(filepath.Join(dir, "out"))

	path, err := sink.Save(&Artifact{Filename: "Billet-A/B-EL-1.pdf", PDF: []byte("%PDF-1.3")})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "Billet-A-B-EL-1.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
}
