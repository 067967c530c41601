package promptengine

// Value-map keys produced by the simple (non-template) generation path.
// Callers can rely on every key existing, including the CTA pair.
const (
	KeyTopic        = "topic"
	KeyLanguage     = "language"
	KeyCategoryName = "category_name"
	KeyCTA          = "cta"
	KeyCTANote      = "cta_note"
)

// ctaAppendedNote marks that a call-to-action block was added to the prompt.
const ctaAppendedNote = "cta_appended"

// ctaTexts maps candle type to the call-to-action paragraph per language.
var ctaTexts = map[string]map[string]string{
	"calm": {
		"en": "End the article by inviting the reader to light a calm candle on CandleTime and take a quiet minute for themselves.",
		"de": "Beende den Artikel mit einer Einladung, auf CandleTime eine Kerze der Ruhe anzuzünden und sich eine stille Minute zu nehmen.",
	},
	"support": {
		"en": "End the article by inviting the reader to light a support candle on CandleTime for someone who needs encouragement right now.",
		"de": "Beende den Artikel mit einer Einladung, auf CandleTime eine Kerze der Unterstützung für jemanden anzuzünden, der gerade Zuspruch braucht.",
	},
	"memory": {
		"en": "End the article by inviting the reader to light a memory candle on CandleTime in remembrance of someone dear.",
		"de": "Beende den Artikel mit einer Einladung, auf CandleTime eine Gedenkkerze für einen geliebten Menschen anzuzünden.",
	},
	"gratitude": {
		"en": "End the article by inviting the reader to light a gratitude candle on CandleTime for something they are thankful for today.",
		"de": "Beende den Artikel mit einer Einladung, auf CandleTime eine Kerze der Dankbarkeit für etwas anzuzünden, wofür sie heute dankbar sind.",
	},
	"focus": {
		"en": "End the article by inviting the reader to light a focus candle on CandleTime before starting their next deep-work session.",
		"de": "Beende den Artikel mit einer Einladung, auf CandleTime eine Kerze der Konzentration anzuzünden, bevor sie ihre nächste Arbeitsphase beginnen.",
	},
}

// BuildSimpleModeVariables assembles the value map for the non-template
// generation path. Topic and language are always set (language defaults to
// DefaultLanguage). When a known candle type is given, the CTA text for that
// type and language is attached along with a short marker; otherwise both
// CTA keys are present but empty. The category name passes through as-is.
func BuildSimpleModeVariables(topic, candleType, language, categoryName string) map[string]string {
	if language == "" {
		language = DefaultLanguage
	}

	values := map[string]string{
		KeyTopic:        topic,
		KeyLanguage:     language,
		KeyCategoryName: categoryName,
		KeyCTA:          "",
		KeyCTANote:      "",
	}

	if candleType == "" {
		return values
	}
	byLang, ok := ctaTexts[candleType]
	if !ok {
		return values
	}
	text, ok := byLang[language]
	if !ok {
		text = byLang[DefaultLanguage]
	}
	values[KeyCTA] = text
	values[KeyCTANote] = ctaAppendedNote
	return values
}
