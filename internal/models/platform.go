// internal/models/platform.go
package models

// Platform identifies a social network. The set is fixed; handlers must
// reject identifiers outside AllPlatforms rather than silently ignoring
// them.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformTwitch    Platform = "twitch"
	PlatformPornhub   Platform = "pornhub"
	PlatformOnlyFans  Platform = "onlyfans"
)

// AllPlatforms lists every supported platform in display order.
var AllPlatforms = []Platform{
	PlatformYouTube,
	PlatformTikTok,
	PlatformInstagram,
	PlatformTwitter,
	PlatformTwitch,
	PlatformPornhub,
	PlatformOnlyFans,
}

// PlatformInfo is the static catalog entry for a platform, served to the
// setup UI and consulted by the social engine.
type PlatformInfo struct {
	ID            Platform `json:"id"`
	Name          string   `json:"name"`
	FollowerLabel string   `json:"follower_label"`
	ContentTypes  []string `json:"content_types"`
	Adult         bool     `json:"adult"`
}

var platformCatalog = map[Platform]PlatformInfo{
	PlatformYouTube:   {ID: PlatformYouTube, Name: "YouTube", FollowerLabel: "subscribers", ContentTypes: []string{"video", "shorts"}},
	PlatformTikTok:    {ID: PlatformTikTok, Name: "TikTok", FollowerLabel: "followers", ContentTypes: []string{"video"}},
	PlatformInstagram: {ID: PlatformInstagram, Name: "Instagram", FollowerLabel: "followers", ContentTypes: []string{"post", "story"}},
	PlatformTwitter:   {ID: PlatformTwitter, Name: "Twitter (X)", FollowerLabel: "followers", ContentTypes: []string{"post"}},
	PlatformTwitch:    {ID: PlatformTwitch, Name: "Twitch", FollowerLabel: "followers", ContentTypes: []string{"stream"}},
	PlatformPornhub:   {ID: PlatformPornhub, Name: "Pornhub", FollowerLabel: "subscribers", ContentTypes: []string{"video"}, Adult: true},
	PlatformOnlyFans:  {ID: PlatformOnlyFans, Name: "OnlyFans", FollowerLabel: "fans", ContentTypes: []string{"image"}, Adult: true},
}

// SupportsContent reports whether the platform accepts posts of the
// given content type.
func (p PlatformInfo) SupportsContent(contentType string) bool {
	for _, ct := range p.ContentTypes {
		if ct == contentType {
			return true
		}
	}
	return false
}

// LookupPlatform validates a raw platform identifier.
func LookupPlatform(id string) (PlatformInfo, bool) {
	info, ok := platformCatalog[Platform(id)]
	return info, ok
}

// PlatformCatalog returns the catalog entries in display order.
func PlatformCatalog() []PlatformInfo {
	out := make([]PlatformInfo, 0, len(AllPlatforms))
	for _, p := range AllPlatforms {
		out = append(out, platformCatalog[p])
	}
	return out
}

// IsAdultPlatform reports whether posting there carries the happiness
// penalty for adult content.
func IsAdultPlatform(p Platform) bool {
	return platformCatalog[p].Adult
}
