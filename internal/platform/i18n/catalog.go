package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys. English text doubles as the key so a missing translation still reads naturally.
const (
	MsgNameRequired        = "Name is required"
	MsgPhoneRequired       = "Phone number is required"
	MsgPhoneInvalid        = "Please enter a valid phone number"
	MsgLocationRequired    = "Location is required"
	MsgTownRequired        = "Town is required"
	MsgEmailInvalid        = "Please enter a valid email address"
	MsgPaymentInvalid      = "Please choose a valid payment method"
	MsgCommentRequired     = "Comment is required"
	MsgCartExcessItems     = "You can order only %d items per order. Only the first %d items will be processed."
	MsgCartExcessExcluded  = "The items below will not be included in this order"
	MsgCartSizesNotSaved   = "Your cart was saved without the chosen sizes. Please check the sizes before ordering."
	MsgOrderPlaced         = "Order placed successfully!"
	MsgShippingNotIncluded = "The price does not include shipping costs"
	MsgNewOrderSubject     = "New order %s"
	MsgPaymentCash         = "Cash"
	MsgPaymentBank         = "Bank transfer"
	MsgStatusPending       = "Pending"
	MsgStatusProcessing    = "Processing"
	MsgStatusCompleted     = "Completed"
	MsgContactNew          = "New"
	MsgContactInProgress   = "In progress"
	MsgContactResolved     = "Resolved"
	MsgCategoryShirts      = "Shirts"
	MsgCategoryPants       = "Pants"
	MsgCategoryJackets     = "Jackets"
	MsgCategoryShoes       = "Shoes"
	MsgCategoryHats        = "Hats"
	MsgCategoryTracksuits  = "Tracksuits"
	MsgCategoryNew         = "New Collection"
)

var translations = map[string]map[language.Tag]string{
	MsgNameRequired: {
		language.Hebrew: "שם הוא שדה חובה",
		language.Arabic: "الاسم مطلوب",
	},
	MsgPhoneRequired: {
		language.Hebrew: "מספר טלפון הוא שדה חובה",
		language.Arabic: "رقم الهاتف مطلوب",
	},
	MsgPhoneInvalid: {
		language.Hebrew: "נא להזין מספר טלפון תקין",
		language.Arabic: "يرجى إدخال رقم هاتف صالح",
	},
	MsgLocationRequired: {
		language.Hebrew: "כתובת היא שדה חובה",
		language.Arabic: "العنوان مطلوب",
	},
	MsgTownRequired: {
		language.Hebrew: "עיר היא שדה חובה",
		language.Arabic: "المدينة مطلوبة",
	},
	MsgEmailInvalid: {
		language.Hebrew: "נא להזין כתובת אימייל תקינה",
		language.Arabic: "يرجى إدخال بريد إلكتروني صالح",
	},
	MsgPaymentInvalid: {
		language.Hebrew: "נא לבחור אמצעי תשלום תקין",
		language.Arabic: "يرجى اختيار طريقة دفع صالحة",
	},
	MsgCommentRequired: {
		language.Hebrew: "נא לכתוב הודעה",
		language.Arabic: "يرجى كتابة رسالتك",
	},
	MsgCartExcessItems: {
		language.Hebrew: "ניתן להזמין עד %d פריטים בהזמנה אחת. רק %d הפריטים הראשונים יטופלו.",
		language.Arabic: "يمكنك طلب %d عناصر فقط في الطلب الواحد. سيتم معالجة أول %d عناصر فقط.",
	},
	MsgCartSizesNotSaved: {
		language.Hebrew: "העגלה נשמרה ללא המידות שבחרת. נא לבדוק את המידות לפני ההזמנה.",
		language.Arabic: "تم حفظ سلتك بدون المقاسات التي اخترتها. يرجى التحقق من المقاسات قبل الطلب.",
	},
	MsgCartExcessExcluded: {
		language.Hebrew: "הפריטים הבאים לא ייכללו בהזמנה זו",
		language.Arabic: "العناصر أدناه لن يتم تضمينها في هذا الطلب",
	},
	MsgOrderPlaced: {
		language.Hebrew: "ההזמנה נשלחה בהצלחה!",
		language.Arabic: "تم تقديم الطلب بنجاح!",
	},
	MsgShippingNotIncluded: {
		language.Hebrew: "המחיר אינו כולל דמי משלוח",
		language.Arabic: "السعر لا يشمل مصاريف الشحن",
	},
	MsgNewOrderSubject: {
		language.Hebrew: "הזמנה חדשה %s",
		language.Arabic: "طلب جديد %s",
	},
	MsgPaymentCash: {
		language.Hebrew: "מזומן",
		language.Arabic: "نقدي",
	},
	MsgPaymentBank: {
		language.Hebrew: "העברה בנקאית",
		language.Arabic: "تحويل بنكي",
	},
	MsgStatusPending: {
		language.Hebrew: "ממתין",
		language.Arabic: "قيد الانتظار",
	},
	MsgStatusProcessing: {
		language.Hebrew: "בטיפול",
		language.Arabic: "قيد المعالجة",
	},
	MsgStatusCompleted: {
		language.Hebrew: "הושלם",
		language.Arabic: "مكتمل",
	},
	MsgContactNew: {
		language.Hebrew: "חדש",
		language.Arabic: "جديد",
	},
	MsgContactInProgress: {
		language.Hebrew: "בטיפול",
		language.Arabic: "قيد المتابعة",
	},
	MsgContactResolved: {
		language.Hebrew: "טופל",
		language.Arabic: "تم الحل",
	},
	MsgCategoryShirts: {
		language.Hebrew: "חולצות",
		language.Arabic: "قمصان",
	},
	MsgCategoryPants: {
		language.Hebrew: "מכנסיים",
		language.Arabic: "بناطيل",
	},
	MsgCategoryJackets: {
		language.Hebrew: "ז'קטים",
		language.Arabic: "جاكيتات",
	},
	MsgCategoryShoes: {
		language.Hebrew: "נעליים",
		language.Arabic: "أحذية",
	},
	MsgCategoryHats: {
		language.Hebrew: "כובעים",
		language.Arabic: "قبعات",
	},
	MsgCategoryTracksuits: {
		language.Hebrew: "טרנינג",
		language.Arabic: "بدلات رياضية",
	},
	MsgCategoryNew: {
		language.Hebrew: "קולקציה חדשה",
		language.Arabic: "تشكيلة جديدة",
	},
}

func buildCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byLang := range translations {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, err
		}
		for tag, msg := range byLang {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}
