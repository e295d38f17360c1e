// storage.go
package s3

// Storage определяет интерфейс физического хранилища объектов.
// Upload возвращает сгенерированный ключ объекта; Delete вызывающая сторона
// обязана логировать и не пробрасывать дальше при окончательном удалении.
type Storage interface {
	Upload(data []byte, contentType string) (string, error)
	Delete(key string) error
	PresignURL(key string) (string, error)
}
