package domain

// Vector - эмбеддинг изображения.
type Vector []float32

// Payload описывает дополнительную информацию вектора во внешнем индексе.
type Payload map[string]any

// NewPayload собирает payload точки по товару.
func NewPayload(p Product, modelVersion string) Payload {
	return Payload{
		"product_id":    p.ID,
		"name":          p.Name,
		"category":      p.Category,
		"image":         p.Image,
		"model_version": modelVersion,
	}
}
