package selector

import "github.com/John-Robertt/reprompt/internal/domain"

// Default 返回内置选择器目录。
//
// 新增平台支持只需要在这里加一条（以及在平台检测里加域名）。
func Default() Catalog {
	c, err := New(map[domain.Platform]map[Field][]string{
		domain.PlatformYouTube: {
			FieldTitle: {
				"h1.ytd-video-primary-info-renderer",
				"h1.style-scope.ytd-video-primary-info-renderer",
				`h1[class*="ytd-video-primary-info-renderer"]`,
				".ytd-video-primary-info-renderer h1",
				"h1",
			},
			FieldDescription: {
				"#description-text",
				"#description",
				".ytd-video-secondary-info-renderer #description",
				`[id="description"]`,
				".description",
			},
			FieldThumbnail: {
				"video",
				".ytp-cued-thumbnail-overlay-image",
				".ytd-player img",
			},
			FieldDuration: {
				".ytp-time-duration",
				".ytd-thumbnail-overlay-time-status-renderer",
			},
			FieldViews: {
				".ytd-video-view-count-renderer",
				".view-count",
			},
			FieldAuthor: {
				".ytd-video-owner-renderer .ytd-channel-name a",
				".ytd-channel-name a",
			},
		},
		domain.PlatformInstagram: {
			FieldTitle: {
				"h1",
				`[data-testid="post-title"]`,
				".x1i10hfl",
			},
			FieldDescription: {
				`[data-testid="post-description"]`,
				`[role="button"] span`,
				".x193iq5w",
			},
			FieldThumbnail: {
				"video",
				`img[style*="object-fit"]`,
			},
			FieldAuthor: {
				`[data-testid="post-username"]`,
				`a[role="link"]`,
			},
		},
	})
	if err != nil {
		// 内置数据由测试锁定，这里出错只可能是编码错误。
		panic(err)
	}
	return c
}
