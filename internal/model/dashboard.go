package model

// Payload shapes projected from the external backend. The backend owns all
// of these; the portal only renders them.

type Booking struct {
	ID           string `json:"id"`
	PropertyID   string `json:"property_id,omitempty"`
	Address      string `json:"address,omitempty"`
	TenantName   string `json:"tenant_name,omitempty"`
	TenantEmail  string `json:"tenant_email,omitempty"`
	TenantPhone  string `json:"tenant_phone,omitempty"`
	ScheduledFor string `json:"scheduled_for,omitempty"`
	Status       string `json:"status,omitempty"`
}

type Recording struct {
	ID         string  `json:"id"`
	CallSID    string  `json:"call_sid,omitempty"`
	FromNumber string  `json:"from_number,omitempty"`
	ToNumber   string  `json:"to_number,omitempty"`
	URL        string  `json:"url,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
}

type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ChatThread struct {
	ID       string        `json:"id"`
	Contact  string        `json:"contact,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

type Realtor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type Assignment struct {
	RealtorID   string   `json:"realtor_id"`
	RealtorName string   `json:"realtor_name,omitempty"`
	ListingIDs  []string `json:"listing_ids"`
}

type PhoneNumber struct {
	Number   string `json:"number"`
	Status   string `json:"status,omitempty"`
	Capacity string `json:"capacity,omitempty"`
}
