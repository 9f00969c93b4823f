package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteFor_TotalIsBasePlusDelivery(t *testing.T) {
	assert.Equal(t, int64(3000), QuoteFor(DeliveryDesk).Total.Amount())
	assert.Equal(t, int64(3300), QuoteFor(DeliveryHome).Total.Amount())
	assert.Equal(t, int64(2500), QuoteFor("").Total.Amount())
}

func TestNew_TotalIndependentOfProduct(t *testing.T) {
	for _, p := range Catalog() {
		for _, opt := range []DeliveryOption{DeliveryDesk, DeliveryHome} {
			d := validDraft()
			d.ProductID = p.ID
			d.Delivery = opt

			o, err := New(d, time.Now())
			require.NoError(t, err)
			assert.Equal(t, BoxPrice+opt.Cost().Amount(), o.Total().Amount(), "%s/%s", p.ID, opt)
		}
	}
}

func TestNew_ExampleOrder(t *testing.T) {
	received := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	d := validDraft()
	d.FullName = "  Ahmed Ali "
	d.ClientRequestID = "0b7c3e4a-aaaa-bbbb-cccc-1234567890ab"

	o, err := New(d, received)
	require.NoError(t, err)

	assert.Equal(t, "Ahmed Ali", o.FullName())
	assert.Equal(t, "model-3", o.Product().ID)
	assert.Equal(t, "/images/watches/3.webp", o.Product().ImagePath)
	assert.Equal(t, int64(2500), o.BoxPrice().Amount())
	assert.Equal(t, int64(800), o.DeliveryCost().Amount())
	assert.Equal(t, int64(3300), o.Total().Amount())
	assert.Equal(t, time.UTC, o.ReceivedAt().Location())
	assert.Equal(t, "7890ab", o.ShortRef())
}

func TestNew_RejectsInvalidDraft(t *testing.T) {
	d := validDraft()
	d.FullName = "A"
	o, err := New(d, time.Now())
	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrInvalidFullName)
}

func TestQuote_Matches(t *testing.T) {
	q := QuoteFor(DeliveryHome)
	assert.True(t, q.Matches(2500, 800, 3300))
	assert.False(t, q.Matches(2500, 500, 3000))
}

func TestCatalog(t *testing.T) {
	products := Catalog()
	require.Len(t, products, 10)
	assert.Equal(t, "model-1", products[0].ID)
	assert.Equal(t, "model-10", products[9].ID)

	products[0].ID = "mutated"
	_, ok := FindProduct("model-1")
	assert.True(t, ok, "Catalog must return a copy")

	assert.Equal(t, "https://shop.example/images/watches/7.webp", ImageURL("https://shop.example/", "model-7"))
	assert.Empty(t, ImageURL("https://shop.example", "model-99"))
}

func TestMessagesFor(t *testing.T) {
	assert.Equal(t, LocaleArabic, MessagesFor("").Locale)
	assert.Equal(t, LocaleArabic, MessagesFor("fr").Locale)
	assert.Equal(t, LocaleEnglish, MessagesFor("en-US").Locale)

	en := MessagesFor("en")
	assert.Equal(t, "already processed", en.AlreadyProcessed)
	assert.Equal(t, "Home delivery", en.DeliveryLabel(DeliveryHome))
	assert.Equal(t, "drone", en.DeliveryLabel("drone"))

	ar := MessagesFor("ar")
	assert.Equal(t, "توصيل للمكتب", ar.DeliveryLabel(DeliveryDesk))
	assert.Equal(t, ar.FieldMessage(FieldFullName), ar.ForError(Validate(Draft{ProductID: "model-1"})))
	assert.Equal(t, ar.Generic, ar.ForError(assert.AnError))
}
