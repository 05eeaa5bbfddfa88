package domain

import (
	"encoding/json"
	"testing"
)

func TestOutcome_ExactlyOneVariant(t *testing.T) {
	rec, _ := NewVideoRecord(PartialRecord{Title: "t"}, "u", PlatformUnknown)

	ok := Success(rec)
	if !ok.OK() || ok.Reason() != "" {
		t.Fatalf("success outcome 不符合预期：ok=%v reason=%q", ok.OK(), ok.Reason())
	}
	if _, has := ok.Record(); !has {
		t.Fatalf("success outcome 应有 record")
	}

	fail := Failure("boom")
	if fail.OK() || fail.Reason() != "boom" {
		t.Fatalf("failure outcome 不符合预期：ok=%v reason=%q", fail.OK(), fail.Reason())
	}
	if _, has := fail.Record(); has {
		t.Fatalf("failure outcome 不应有 record")
	}

	if Failure("").Reason() == "" {
		t.Fatalf("空 reason 应被替换为非空占位")
	}
}

func TestResponse_WireShape(t *testing.T) {
	rec, _ := NewVideoRecord(PartialRecord{Title: "t"}, "u", PlatformYouTube)
	b, err := json.Marshal(Success(rec).Response())
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	want := `{"success":true,"data":{"title":"t","description":"No description found","url":"u","platform":"youtube"}}`
	if string(b) != want {
		t.Fatalf("期望 %s，实际 %s", want, b)
	}

	b, _ = json.Marshal(Failure("nope").Response())
	if string(b) != `{"success":false,"error":"nope"}` {
		t.Fatalf("failure 线上格式不符合预期：%s", b)
	}
}

func TestResponse_Outcome(t *testing.T) {
	var nilResp *Response
	if nilResp.Outcome().Reason() != ErrParseFailed {
		t.Fatalf("nil 应答应映射为 %q", ErrParseFailed)
	}

	// success=true 但没有 data：不能得到空记录。
	if (&Response{Success: true}).Outcome().OK() {
		t.Fatalf("缺少 data 的应答不应视为成功")
	}

	// data 中标题为空：同样失败。
	if (&Response{Success: true, Data: &VideoRecord{URL: "u"}}).Outcome().OK() {
		t.Fatalf("空标题的 data 不应视为成功")
	}

	out := (&Response{Success: false, Error: "x"}).Outcome()
	if out.Reason() != "x" {
		t.Fatalf("期望 reason=x，实际=%q", out.Reason())
	}

	out = (&Response{Success: true, Data: &VideoRecord{Title: "t", URL: "u", Platform: PlatformInstagram}}).Outcome()
	r, ok := out.Record()
	if !ok || r.Title != "t" || r.Platform != PlatformInstagram {
		t.Fatalf("成功应答还原不符合预期：%+v ok=%v", r, ok)
	}
}
