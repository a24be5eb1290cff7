package pattern

// sourceKind различает, откуда поле берёт варианты выбора.
type sourceKind uint8

const (
	sourceInline sourceKind = iota
	sourceDefinition
)

// OptionSource — либо собственный список вариантов поля (Inline), либо
// ссылка на общий Definition (FromDefinition). Оба сразу задать нельзя.
//
// Нулевое значение — Inline(nil): вариантов нет.
type OptionSource struct {
	kind         sourceKind
	inline       []FieldOption
	definitionID string
}

// Inline — собственные варианты поля.
func Inline(opts []FieldOption) OptionSource {
	return OptionSource{kind: sourceInline, inline: opts}
}

// FromDefinition — варианты берутся из Definition с данным id.
func FromDefinition(definitionID string) OptionSource {
	return OptionSource{kind: sourceDefinition, definitionID: definitionID}
}

// legacyDefinition — старые документы хранили оба ключа сразу; inline-список
// остаётся только как запасной вариант для нормализации.
func legacyDefinition(definitionID string, fallback []FieldOption) OptionSource {
	return OptionSource{kind: sourceDefinition, definitionID: definitionID, inline: fallback}
}

// DefinitionID возвращает id Definition, если варианты берутся из него.
func (s OptionSource) DefinitionID() (string, bool) {
	if s.kind != sourceDefinition {
		return "", false
	}
	return s.definitionID, true
}

// InlineOptions возвращает собственный список поля (для legacy-документа — запасной).
func (s OptionSource) InlineOptions() []FieldOption {
	return s.inline
}

// IsDefinition сообщает, ссылается ли поле на Definition.
func (s OptionSource) IsDefinition() bool { return s.kind == sourceDefinition }
