package order

import (
	"errors"
	"strings"
)

const (
	LocaleArabic  = "ar"
	LocaleEnglish = "en"
)

// MailLabels captions used in the notification email.
type MailLabels struct {
	Title          string
	FromName       string
	Reference      string
	ProductHeading string
	FullName       string
	Phone          string
	Wilaya         string
	Baladiya       string
	Delivery       string
	BoxPrice       string
	DeliveryCost   string
	Total          string
	Notes          string
	Currency       string
	Footer         string
}

// Messages user-facing text for one locale.
type Messages struct {
	Locale    string
	Direction string // "rtl" or "ltr"

	Accepted         string
	AlreadyProcessed string
	Pending          string
	Connectivity     string
	Generic          string
	StatusNew        string

	fields   map[Field]string
	delivery map[DeliveryOption]string

	Mail MailLabels
}

var arabic = Messages{
	Locale:           LocaleArabic,
	Direction:        "rtl",
	Accepted:         "تم استلام الطلب بنجاح",
	AlreadyProcessed: "تم معالجة الطلب مسبقاً",
	Pending:          "تم استلام الطلب (بانتظار التأكيد)",
	Connectivity:     "فشل الاتصال. يرجى التحقق من الإنترنت.",
	Generic:          "حدث خطأ. يرجى المحاولة مرة أخرى.",
	StatusNew:        "جديد",
	fields: map[Field]string{
		FieldProduct:  "يرجى اختيار موديل الساعة",
		FieldFullName: "الاسم الكامل مطلوب (حرفان على الأقل)",
		FieldPhone:    "رقم الهاتف غير صالح",
		FieldWilaya:   "الولاية مطلوبة",
		FieldBaladiya: "البلدية مطلوبة",
		FieldDelivery: "يرجى اختيار طريقة التوصيل",
	},
	delivery: map[DeliveryOption]string{
		DeliveryHome: "توصيل للمنزل",
		DeliveryDesk: "توصيل للمكتب",
	},
	Mail: MailLabels{
		Title:          "طلب جديد",
		FromName:       "طلبات المتجر",
		Reference:      "رقم الطلب",
		ProductHeading: "المنتج المختار",
		FullName:       "الاسم",
		Phone:          "الهاتف",
		Wilaya:         "الولاية",
		Baladiya:       "البلدية",
		Delivery:       "التوصيل",
		BoxPrice:       "سعر الطقم",
		DeliveryCost:   "سعر التوصيل",
		Total:          "المجموع الكلي",
		Notes:          "ملاحظات",
		Currency:       "دج",
		Footer:         "تم استلام هذا الطلب من المتجر الإلكتروني",
	},
}

var english = Messages{
	Locale:           LocaleEnglish,
	Direction:        "ltr",
	Accepted:         "order received",
	AlreadyProcessed: "already processed",
	Pending:          "order received (pending confirmation)",
	Connectivity:     "Connection failed. Please check your internet.",
	Generic:          "Something went wrong. Please try again.",
	StatusNew:        "new",
	fields: map[Field]string{
		FieldProduct:  "please choose a watch model",
		FieldFullName: "full name is required (at least 2 characters)",
		FieldPhone:    "invalid phone number",
		FieldWilaya:   "wilaya is required",
		FieldBaladiya: "baladiya is required",
		FieldDelivery: "please choose a delivery option",
	},
	delivery: map[DeliveryOption]string{
		DeliveryHome: "Home delivery",
		DeliveryDesk: "Desk pickup",
	},
	Mail: MailLabels{
		Title:          "New order",
		FromName:       "Shop orders",
		Reference:      "Order ref",
		ProductHeading: "Selected product",
		FullName:       "Name",
		Phone:          "Phone",
		Wilaya:         "Wilaya",
		Baladiya:       "Baladiya",
		Delivery:       "Delivery",
		BoxPrice:       "Box price",
		DeliveryCost:   "Delivery cost",
		Total:          "Total",
		Notes:          "Notes",
		Currency:       "DZD",
		Footer:         "This order was received from the online shop",
	},
}

// MessagesFor picks the message set for a locale tag such as "en" or "ar-DZ".
// Unknown locales fall back to Arabic.
func MessagesFor(locale string) Messages {
	tag := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	if tag == LocaleEnglish {
		return english
	}
	return arabic
}

// FieldMessage the text shown under a field.
func (m Messages) FieldMessage(f Field) string {
	if s, ok := m.fields[f]; ok {
		return s
	}
	return m.Generic
}

// ForError localizes a validation error; non-field errors get the generic text.
func (m Messages) ForError(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return m.FieldMessage(fe.Field())
	}
	return m.Generic
}

// DeliveryLabel the human label written to the sheet and the email.
func (m Messages) DeliveryLabel(d DeliveryOption) string {
	if s, ok := m.delivery[d]; ok {
		return s
	}
	return string(d)
}
