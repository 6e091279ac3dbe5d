package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/leasap/portal-server-go/internal/model"
)

// Panel read endpoints. The payload wrapping differs between them, which is
// why panels attach their own extractors instead of a shared decode.
const (
	PathApartments  = "/apartments"
	PathBookings    = "/bookings"
	PathRecordings  = "/recordings"
	PathChatHistory = "/chat-history"
	PathRealtors    = "/property-manager/realtors"
	PathAssignments = "/property-manager/assignments"
)

// LoginResult is the backend's /login response projected onto the fields the
// portal stores per session.
type LoginResult struct {
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	RealtorID         string `json:"realtor_id"`
	PropertyManagerID string `json:"property_manager_id"`
	UserType          string `json:"user_type"`
	AuthLink          string `json:"auth_link"`
	Name              string `json:"user_name"`
	Email             string `json:"user_email"`
	Gender            string `json:"user_gender"`
}

// Credentials collapses the backend's two account-id fields into one record.
func (r LoginResult) Credentials() model.Credentials {
	accountType := model.AccountType(r.UserType)
	accountID := r.RealtorID
	if accountType == model.AccountTypePropertyManager && r.PropertyManagerID != "" {
		accountID = r.PropertyManagerID
	}
	return model.Credentials{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		AccountID:    accountID,
		AccountType:  accountType,
		AuthLink:     r.AuthLink,
		Name:         r.Name,
		Email:        r.Email,
		Gender:       r.Gender,
	}
}

// Login authenticates against the backend. Unauthenticated call: no bearer
// header goes out.
func (c *Client) Login(ctx context.Context, req model.SignInRequest) (*LoginResult, error) {
	var result LoginResult
	if err := c.JSON(ctx, "", http.MethodPost, "/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateRealtor submits the realtor signup form. The backend expects
// multipart, matching its photo-upload variant of the endpoint.
func (c *Client) CreateRealtor(ctx context.Context, req model.SignUpRequest, photo io.Reader, photoName string) error {
	fields := []MultipartField{
		{Name: "name", Value: req.Name},
		{Name: "email", Value: req.Email},
		{Name: "password", Value: req.Password},
		{Name: "phone", Value: req.Phone},
	}
	if req.Gender != "" {
		fields = append(fields, MultipartField{Name: "gender", Value: req.Gender})
	}
	if req.Agency != "" {
		fields = append(fields, MultipartField{Name: "agency", Value: req.Agency})
	}
	if photo != nil {
		fields = append(fields, MultipartField{Name: "photo", Filename: photoName, Content: photo})
	}
	return c.Multipart(ctx, "", "/CreateRealtor", fields, nil)
}

func (c *Client) MyNumber(ctx context.Context, tokenHash string) (*model.PhoneNumber, error) {
	var number model.PhoneNumber
	if err := c.JSON(ctx, tokenHash, http.MethodGet, "/my-number", nil, &number); err != nil {
		return nil, err
	}
	return &number, nil
}

func (c *Client) BuyNumber(ctx context.Context, tokenHash, areaCode string) (*model.PhoneNumber, error) {
	payload := map[string]string{}
	if areaCode != "" {
		payload["area_code"] = areaCode
	}
	var number model.PhoneNumber
	if err := c.JSON(ctx, tokenHash, http.MethodPost, "/buy-number", payload, &number); err != nil {
		return nil, err
	}
	return &number, nil
}

func (c *Client) AddRealtor(ctx context.Context, tokenHash string, req model.AddRealtorRequest) error {
	return c.JSON(ctx, tokenHash, http.MethodPost, "/property-manager/add-realtor", req, nil)
}

func (c *Client) DeleteRealtor(ctx context.Context, tokenHash, realtorID string) error {
	path := "/property-manager/realtors/" + url.PathEscape(realtorID)
	return c.JSON(ctx, tokenHash, http.MethodDelete, path, nil, nil)
}

func (c *Client) AssignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error {
	return c.JSON(ctx, tokenHash, http.MethodPost, "/property-manager/assign-properties", req, nil)
}

func (c *Client) UnassignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error {
	return c.JSON(ctx, tokenHash, http.MethodPost, "/property-manager/unassign-properties", req, nil)
}

func (c *Client) UpdateListingStatus(ctx context.Context, tokenHash, listingID, status string) error {
	path := fmt.Sprintf("/properties/%s/status", url.PathEscape(listingID))
	return c.JSON(ctx, tokenHash, http.MethodPatch, path, map[string]string{"status": status}, nil)
}

func (c *Client) UpdateListingAgent(ctx context.Context, tokenHash, listingID string, agent *model.Agent) error {
	path := fmt.Sprintf("/properties/%s/agent", url.PathEscape(listingID))
	return c.JSON(ctx, tokenHash, http.MethodPatch, path, map[string]*model.Agent{"agent": agent}, nil)
}

// UploadListings forwards a listings file. Property managers upload through
// their own endpoint, realtors through the legacy one.
func (c *Client) UploadListings(ctx context.Context, tokenHash string, propertyManager bool, filename string, file io.Reader) error {
	path := "/UploadListings"
	if propertyManager {
		path = "/property-manager/upload-listings"
	}
	fields := []MultipartField{{Name: "file", Filename: filename, Content: file}}
	return c.Multipart(ctx, tokenHash, path, fields, nil)
}

func (c *Client) Contact(ctx context.Context, req model.ContactRequest) error {
	return c.JSON(ctx, "", http.MethodPost, "/contact", req, nil)
}

func (c *Client) BookDemo(ctx context.Context, req model.DemoRequest) error {
	return c.JSON(ctx, "", http.MethodPost, "/book-demo", req, nil)
}
