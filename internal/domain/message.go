package domain

// MessageType 是请求信封的分发键。
type MessageType string

const (
	MessageExtractVideoInfo MessageType = "EXTRACT_VIDEO_INFO"

	// LegacyActionExtract 是旧版内容脚本接受的 {action: "extractVideoInfo"} 形式。
	LegacyActionExtract = "extractVideoInfo"
)

const (
	ErrUnknownMessageType = "Unknown message type"
	ErrParseFailed        = "Failed to parse page"
)

// Request 是控制端发往页面上下文的信封。
// ID 只用于日志关联，接收端不依赖它。
type Request struct {
	Type    MessageType    `json:"type,omitempty"`
	Action  string         `json:"action,omitempty"`
	ID      string         `json:"id,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Response 是页面上下文的应答，形状与 Outcome 对应。
type Response struct {
	Success bool         `json:"success"`
	Data    *VideoRecord `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Outcome 把应答还原为 Outcome。success=true 但缺少 data 视为失败，不会得到空记录。
func (r *Response) Outcome() Outcome {
	if r == nil {
		return Failure(ErrParseFailed)
	}
	if r.Success && r.Data != nil {
		if rec, err := NewVideoRecord(PartialRecord{
			Title:       r.Data.Title,
			Description: r.Data.Description,
			Thumbnail:   r.Data.Thumbnail,
			Duration:    r.Data.Duration,
			Views:       r.Data.Views,
			Author:      r.Data.Author,
		}, r.Data.URL, r.Data.Platform); err == nil {
			return Success(rec)
		}
	}
	if r.Error != "" {
		return Failure(r.Error)
	}
	return Failure(ErrParseFailed)
}
