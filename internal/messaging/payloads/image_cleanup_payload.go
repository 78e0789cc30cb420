package payloads

// Причины, по которым объект в хранилище больше не нужен.
const (
	CleanupReasonWriteFailed = "write_failed"
	CleanupReasonReplaced    = "replaced"
	CleanupReasonDeleted     = "deleted"
)

// ImageCleanupPayload описывает объект в хранилище, который нужно удалить
// воркером через RabbitMQ.
type ImageCleanupPayload struct {
	ObjectKey string `json:"object_key"`
	Reason    string `json:"reason"`
}
