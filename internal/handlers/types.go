package handlers

import "time"

// ShortLinkBody is the JSON projection of a short link shared by create,
// get, update, and list responses.
type ShortLinkBody struct {
	Code        string     `doc:"The short code"                example:"abc1234"                            json:"code"`
	ShortURL    string     `doc:"The full short URL"            example:"http://localhost:8888/abc1234"      json:"shortUrl"`
	OriginalURL string     `doc:"The original URL"              example:"https://example.com/very/long/path" json:"originalUrl"`
	Clicks      int64      `doc:"Durable click count"           json:"clicks"`
	Tags        []string   `doc:"Link tags"                     json:"tags,omitempty"`
	CreatedAt   time.Time  `doc:"Creation time"                 json:"createdAt"`
	ExpiresAt   *time.Time `doc:"Expiry time, absent when none" json:"expiresAt,omitempty"`
	IsActive    bool       `doc:"Whether the link is active"    json:"isActive"`
}

// CreateLinkRequest is the request body for creating a short link.
type CreateLinkRequest struct {
	Body struct {
		URL         string   `doc:"The URL to shorten"                example:"https://example.com/very/long/path" json:"url"`
		CustomAlias string   `doc:"Optional custom alias"             example:"my-link"                            json:"customAlias,omitempty"`
		ExpiresIn   int      `doc:"Days until expiry, 1-365"          example:"30"                                 json:"expiresIn,omitempty"`
		Tags        []string `doc:"Up to ten tags"                    json:"tags,omitempty"`
	}
}

// CreateLinkResponse is the response for a successfully created short link.
type CreateLinkResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body ShortLinkBody
}

// RedirectRequest is the request for resolving a short code.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
}

// RedirectResponse issues a permanent redirect to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// GetLinkRequest is the request for fetching a link's details.
type GetLinkRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
}

// GetLinkResponse carries a single link.
type GetLinkResponse struct {
	Body ShortLinkBody
}

// ListLinksRequest pages through active links, newest first.
type ListLinksRequest struct {
	Offset int `doc:"Number of links to skip"   example:"0"  minimum:"0" query:"offset"`
	Limit  int `doc:"Page size, defaults to 20" example:"20" maximum:"100" minimum:"0" query:"limit"`
}

// ListLinksResponse carries one page of links and the total active count.
type ListLinksResponse struct {
	Body struct {
		Links []ShortLinkBody `json:"links"`
		Total int64           `doc:"Total number of active links" json:"total"`
	}
}

// UpdateLinkRequest replaces a link's tags and/or expiry.
type UpdateLinkRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
	Body struct {
		Tags      []string `doc:"Replacement tags"                  json:"tags,omitempty"`
		ExpiresIn int      `doc:"New expiry in days, 1-365"         json:"expiresIn,omitempty"`
	}
}

// UpdateLinkResponse carries the updated link.
type UpdateLinkResponse struct {
	Body ShortLinkBody
}

// DeleteLinkRequest soft-deletes a link.
type DeleteLinkRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
}

// DeleteLinkResponse is an empty 204 response.
type DeleteLinkResponse struct {
	Status int
}

// LinkAnalyticsRequest asks for a link's click summary over a window.
type LinkAnalyticsRequest struct {
	Code string `doc:"The short code"                 example:"abc1234" path:"code"`
	Days int    `doc:"Window in days, defaults to 7"  example:"7"       maximum:"90" minimum:"0" query:"days"`
}

// OverallStatsRequest asks for service-wide statistics.
type OverallStatsRequest struct{}
