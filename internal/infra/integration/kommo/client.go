// Package kommo pushes new buyer leads to the Kommo CRM.
package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// SyncTag marks every lead created by this service.
const SyncTag = "buyer-leads"

var ErrNotConfigured = errors.New("kommo is not configured")

type Client struct {
	apiToken string
	baseURL  string
	http     *http.Client
}

// NewClient expects baseURL like "https://<account>.kommo.com/api/v4".
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		apiToken: apiToken,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SyncLead finds or creates the contact by phone, then creates a lead
// linked to it. It returns the Kommo lead id.
func (c *Client) SyncLead(ctx context.Context, lead *entity.Lead) (int, error) {
	if c.apiToken == "" || c.baseURL == "" {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, lead)
	if err != nil {
		return 0, fmt.Errorf("contact: %w", err)
	}

	tags := []tag{{Name: SyncTag}}
	for _, t := range lead.Tags {
		tags = append(tags, tag{Name: t})
	}
	req := []leadRequest{{
		Name: fmt.Sprintf("%s - %s %s", lead.FullName, lead.City, lead.PropertyType),
		Embedded: leadEmbedded{
			Tags:     tags,
			Contacts: []ref{{ID: contactID}},
		},
	}}
	if lead.BudgetMax != nil {
		req[0].Price = *lead.BudgetMax
	}

	var resp embeddedResponse
	if err := c.do(ctx, http.MethodPost, "/leads", req, &resp, http.StatusOK); err != nil {
		return 0, fmt.Errorf("lead: %w", err)
	}
	if len(resp.Embedded.Leads) == 0 {
		return 0, errors.New("lead: empty response")
	}
	return resp.Embedded.Leads[0].ID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, lead *entity.Lead) (int, error) {
	id, err := c.findContactByPhone(ctx, lead.Phone)
	if err != nil {
		return 0, err
	}
	if id > 0 {
		return id, nil
	}
	return c.createContact(ctx, lead)
}

// findContactByPhone returns 0 when no contact matches.
func (c *Client) findContactByPhone(ctx context.Context, phone string) (int, error) {
	var resp embeddedResponse
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(phone), nil, &resp, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return 0, err
	}
	if len(resp.Embedded.Contacts) == 0 {
		return 0, nil
	}
	return resp.Embedded.Contacts[0].ID, nil
}

func (c *Client) createContact(ctx context.Context, lead *entity.Lead) (int, error) {
	fields := []customField{{
		FieldCode: "PHONE",
		Values:    []customFieldValue{{Value: lead.Phone, EnumCode: "WORK"}},
	}}
	if lead.Email != nil {
		fields = append(fields, customField{
			FieldCode: "EMAIL",
			Values:    []customFieldValue{{Value: *lead.Email, EnumCode: "WORK"}},
		})
	}

	var resp embeddedResponse
	req := []contactRequest{{Name: lead.FullName, CustomFieldsValues: fields}}
	if err := c.do(ctx, http.MethodPost, "/contacts", req, &resp, http.StatusOK, http.StatusCreated); err != nil {
		return 0, err
	}
	if len(resp.Embedded.Contacts) == 0 {
		return 0, errors.New("empty contact response")
	}
	return resp.Embedded.Contacts[0].ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, okStatus ...int) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	ok := false
	for _, s := range okStatus {
		if resp.StatusCode == s {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if len(respBody) == 0 || out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
