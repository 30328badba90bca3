package domain

import "fmt"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type MediaDestination string

const (
	MediaDestinationHome    MediaDestination = "home"
	MediaDestinationGallery MediaDestination = "gallery"
)

type Media struct {
	ID          string           `json:"_id,omitempty"`
	Type        MediaType        `json:"type"`
	Destination MediaDestination `json:"destination"`
	URL         string           `json:"url"`
	Thumbnail   string           `json:"thumbnail,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category,omitempty"`
	SourceEvent EventRef         `json:"sourceEvent,omitempty"`
}

// Validate checks a media item before it is sent; stored items must also carry an id.
func (m Media) Validate(stored bool) error {
	if stored && m.ID == "" {
		return fmt.Errorf("%w: media id is required", ErrInvalidRecord)
	}
	if m.Type != MediaTypeImage && m.Type != MediaTypeVideo {
		return fmt.Errorf("%w: media %s has unknown type %q", ErrInvalidRecord, m.ID, m.Type)
	}
	if m.Destination != MediaDestinationHome && m.Destination != MediaDestinationGallery {
		return fmt.Errorf("%w: media %s has unknown destination %q", ErrInvalidRecord, m.ID, m.Destination)
	}
	if m.URL == "" {
		return fmt.Errorf("%w: media %s has no url", ErrInvalidRecord, m.ID)
	}
	return nil
}

type Admin struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

func (a Admin) Validate() error {
	if a.Email == "" {
		return fmt.Errorf("%w: admin email is required", ErrInvalidRecord)
	}
	return nil
}

type AdminSession struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}
