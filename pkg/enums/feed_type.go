package enums

import "fmt"

// FeedType selects which authors are visible in a feed fetch.
// "your-feed" restricts to the caller and their accepted connections,
// "for-you" is unrestricted.
type FeedType string

const (
	FeedTypeYourFeed FeedType = "your-feed"
	FeedTypeForYou   FeedType = "for-you"
)

var validFeedTypes = []FeedType{
	FeedTypeYourFeed,
	FeedTypeForYou,
}

// IsValid reports whether the value is a known FeedType.
func (f FeedType) IsValid() bool {
	for _, candidate := range validFeedTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFeedType converts raw input into a FeedType, defaulting empty
// input to the connection-restricted feed.
func ParseFeedType(value string) (FeedType, error) {
	if value == "" {
		return FeedTypeYourFeed, nil
	}
	for _, candidate := range validFeedTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feed type %q", value)
}
