package domain

// Outcome 是一次提取尝试的标签化结果：要么成功带 record，要么失败带 reason。
// 只能通过 Success / Failure 构造，保证两种变体恰好一个被填充。
type Outcome struct {
	record *VideoRecord
	reason string
}

func Success(r VideoRecord) Outcome {
	return Outcome{record: &r}
}

func Failure(reason string) Outcome {
	if reason == "" {
		reason = "unknown error"
	}
	return Outcome{reason: reason}
}

func (o Outcome) OK() bool { return o.record != nil }

// Record 返回成功时的记录；失败时 ok=false。
func (o Outcome) Record() (VideoRecord, bool) {
	if o.record == nil {
		return VideoRecord{}, false
	}
	return *o.record, true
}

// Reason 返回失败原因；成功时为空串。
func (o Outcome) Reason() string {
	if o.record != nil {
		return ""
	}
	return o.reason
}

// Response 把 Outcome 转为跨上下文的线上格式。
func (o Outcome) Response() *Response {
	if r, ok := o.Record(); ok {
		return &Response{Success: true, Data: &r}
	}
	return &Response{Success: false, Error: o.Reason()}
}
