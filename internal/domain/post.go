package domain

import (
	"fmt"
	"strings"
)

type PostType int

const (
	PostTypeUnsupported PostType = iota
	PostTypeLink
	PostTypeStatus
	PostTypeVideo
	PostTypeOffer
	PostTypePhoto
)

var postTypeNames = [...]string{
	PostTypeUnsupported: "UNSUPPORTED",
	PostTypeLink:        "LINK",
	PostTypeStatus:      "STATUS",
	PostTypeVideo:       "VIDEO",
	PostTypeOffer:       "OFFER",
	PostTypePhoto:       "PHOTO",
}

// PostTypeFromGraph maps the Graph API "type" field. Unknown values are unsupported.
func PostTypeFromGraph(graphType string) PostType {
	for t, name := range postTypeNames {
		if strings.EqualFold(name, graphType) {
			return PostType(t)
		}
	}
	return PostTypeUnsupported
}

func (t PostType) String() string {
	if t < 0 || int(t) >= len(postTypeNames) {
		return postTypeNames[PostTypeUnsupported]
	}
	return postTypeNames[t]
}

func (t PostType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PostType) UnmarshalText(text []byte) error {
	for i, name := range postTypeNames {
		if strings.EqualFold(name, string(text)) {
			*t = PostType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown post type %q", string(text))
}

// Post is a platform content item. The fetcher creates it with only the ID set;
// details and attachment fetches fill in the rest.
type Post struct {
	ID             string
	Type           PostType
	Message        string
	ObjectID       int64
	DetailsFetched bool
}

func (p Post) HasAttachment() bool {
	return p.ObjectID != 0
}
