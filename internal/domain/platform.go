package domain

import "fmt"

// Platform 是页面所属的视频平台（封闭枚举）。
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformUnknown   Platform = "unknown"
)

// Platforms 返回有专用选择器的平台（不含 unknown），顺序稳定。
func Platforms() []Platform {
	return []Platform{PlatformYouTube, PlatformInstagram}
}

// Supported 表示该平台是否走结构化提取（而不是通用 meta 回退）。
func (p Platform) Supported() bool {
	return p == PlatformYouTube || p == PlatformInstagram
}

// ParsePlatform 把字符串解析为已知平台；unknown 也是合法值。
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformYouTube, PlatformInstagram, PlatformUnknown:
		return Platform(s), nil
	default:
		return "", fmt.Errorf("未知平台：%q", s)
	}
}
