package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openbrewed/barback/pkg/models"
)

// BarbackClient talks to a barback deployment. A bearer token is
// attached when configured; the public read endpoints work without one.
type BarbackClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

type ClientOption func(*BarbackClient)

func New(options ...ClientOption) *BarbackClient {
	b := &BarbackClient{
		httpClient: http.DefaultClient,
	}

	for _, o := range options {
		o(b)
	}

	return b
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(bc *BarbackClient) {
		bc.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(bc *BarbackClient) {
		bc.baseURL = baseURL
	}
}

func WithToken(token string) ClientOption {
	return func(bc *BarbackClient) {
		bc.token = token
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(bc *BarbackClient) {
		bc.httpClient.Timeout = timeout
	}
}

// APIError is a non-success envelope returned by the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drink API: %s (status %d)", e.Message, e.Status)
}

// DrinkPatch carries a partial update. Nil Title leaves the title
// alone; a nil Recipe leaves the recipe alone.
type DrinkPatch struct {
	Title  *string             `json:"title,omitempty"`
	Recipe []models.Ingredient `json:"recipe,omitempty"`
}

type drinkEnvelope struct {
	Success bool            `json:"success"`
	Drinks  json.RawMessage `json:"drinks"`
	Delete  uint64          `json:"delete"`
	Message string          `json:"message"`
}

func (bc *BarbackClient) do(ctx context.Context, method, path string, payload interface{}) (*drinkEnvelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, bc.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bc.token != "" {
		req.Header.Set("Authorization", "Bearer "+bc.token)
	}

	resp, err := bc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope drinkEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("drink API: decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: envelope.Message}
	}
	return &envelope, nil
}

// Drinks fetches the public menu in its summary form.
func (bc *BarbackClient) Drinks(ctx context.Context) ([]models.DrinkSummary, error) {
	envelope, err := bc.do(ctx, http.MethodGet, "/drinks", nil)
	if err != nil {
		return nil, err
	}
	var drinks []models.DrinkSummary
	if err := json.Unmarshal(envelope.Drinks, &drinks); err != nil {
		return nil, err
	}
	return drinks, nil
}

// DrinksDetail fetches the full catalog including ingredient names.
func (bc *BarbackClient) DrinksDetail(ctx context.Context) ([]models.DrinkDetail, error) {
	envelope, err := bc.do(ctx, http.MethodGet, "/drinks-detail", nil)
	if err != nil {
		return nil, err
	}
	var drinks []models.DrinkDetail
	if err := json.Unmarshal(envelope.Drinks, &drinks); err != nil {
		return nil, err
	}
	return drinks, nil
}

// CreateDrink adds a drink to the catalog and returns it in full form.
func (bc *BarbackClient) CreateDrink(ctx context.Context, title string, recipe []models.Ingredient) (models.DrinkDetail, error) {
	payload := map[string]interface{}{"title": title, "recipe": recipe}
	envelope, err := bc.do(ctx, http.MethodPost, "/drinks", payload)
	if err != nil {
		return models.DrinkDetail{}, err
	}
	return singleDrink(envelope)
}

// UpdateDrink applies a partial update and returns the updated drink.
func (bc *BarbackClient) UpdateDrink(ctx context.Context, id uint64, patch DrinkPatch) (models.DrinkDetail, error) {
	envelope, err := bc.do(ctx, http.MethodPatch, fmt.Sprintf("/drinks/%d", id), patch)
	if err != nil {
		return models.DrinkDetail{}, err
	}
	return singleDrink(envelope)
}

// DeleteDrink removes a drink and returns the deleted id.
func (bc *BarbackClient) DeleteDrink(ctx context.Context, id uint64) (uint64, error) {
	envelope, err := bc.do(ctx, http.MethodDelete, fmt.Sprintf("/drinks/%d", id), nil)
	if err != nil {
		return 0, err
	}
	return envelope.Delete, nil
}

func singleDrink(envelope *drinkEnvelope) (models.DrinkDetail, error) {
	var drinks []models.DrinkDetail
	if err := json.Unmarshal(envelope.Drinks, &drinks); err != nil {
		return models.DrinkDetail{}, err
	}
	if len(drinks) == 0 {
		return models.DrinkDetail{}, fmt.Errorf("drink API: empty drinks payload")
	}
	return drinks[0], nil
}
