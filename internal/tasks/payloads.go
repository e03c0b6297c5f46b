package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeContentSeed = "content:seed"
)

// ContentSeedPayload 描述一次内容初始化请求。
type ContentSeedPayload struct {
	RequestedBy   string `json:"requested_by,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

// NewContentSeedTask 构造一个把静态内容写入远程库的任务。
// 同一时间只允许一个待执行的初始化任务。
func NewContentSeedTask(requestedBy, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ContentSeedPayload{
		RequestedBy:   requestedBy,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeContentSeed, payload, asynq.MaxRetry(3), asynq.Unique(time.Minute)), nil
}
