package domain

// QdrantPoint описывает запись в Qdrant
type QdrantPoint struct {
	ID      uint64
	Vector  Vector
	Payload Payload
}

func NewQdrantPoint(id uint64, vector Vector, payload Payload) *QdrantPoint {
	return &QdrantPoint{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}
