package domain

// Image описывает загруженное изображение в объектном хранилище.
type Image struct {
	Name        string // имя файла, под которым изображение отдаётся клиенту
	ObjectKey   string
	Size        int64
	ContentType string
	Data        []byte
}

func NewImage(name, objectKey, contentType string, data []byte) *Image {
	return &Image{
		Name:        name,
		ObjectKey:   objectKey,
		Size:        int64(len(data)),
		ContentType: contentType,
		Data:        data,
	}
}
