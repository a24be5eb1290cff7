package form

// Рендереры значений полей в редакторе страниц.
const (
	InputBoolean     = "boolean"
	InputDateTime    = "dateTime"
	InputHTML        = "html"
	InputHeader      = "header"
	InputList        = "list"
	InputText        = "text"
	InputClientImage = "clientImage"
)

var inputKinds = map[string]string{
	"text":        InputText,
	"boolean":     InputBoolean,
	"dateTime":    InputDateTime,
	"date":        InputDateTime,
	"html":        InputHTML,
	"header":      InputHeader,
	"list":        InputList,
	"clientImage": InputClientImage,
}

// InputKind — рендерер для вида поля; неизвестный вид рисуется как text.
func InputKind(fieldType string) string {
	if k, ok := inputKinds[fieldType]; ok {
		return k
	}
	return InputText
}

// InputKindFor разрешает typeFrom: рендерер для поля с данным fieldTypeId.
func (b *Builder) InputKindFor(fieldTypeID string) string {
	for _, ft := range b.fieldTypes {
		if ft.ID == fieldTypeID {
			return InputKind(ft.Type)
		}
	}
	return InputText
}
