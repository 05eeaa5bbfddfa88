package extract

import (
	"strings"

	"github.com/John-Robertt/reprompt/internal/domain"
)

// DetectPlatform 按 URL 子串（不区分大小写）判断平台。全函数，不会失败。
func DetectPlatform(url string) domain.Platform {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return domain.PlatformYouTube
	case strings.Contains(u, "instagram.com"):
		return domain.PlatformInstagram
	default:
		return domain.PlatformUnknown
	}
}
