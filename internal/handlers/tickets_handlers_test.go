package handlers

import (
	"net/http"
	"testing"

	"github.com/gatherly/backend/internal/models"
)

func TestTicketingEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	organizer, organizerToken := createTestUser(t, env.db, "ticket-organizer@test.com")
	_, strangerToken := createTestUser(t, env.db, "ticket-stranger@test.com")
	event := createTestEvent(t, env.db, organizer)

	var ticketTypeID string

	t.Run("POST ticket-types on a private event is rejected", func(t *testing.T) {
		privateEvent := createTestEvent(t, env.db, organizer)
		if err := env.db.Model(privateEvent).Update("is_private", true).Error; err != nil {
			t.Fatalf("failed making event private: %v", err)
		}

		resp := performJSONRequest(t, env.app, http.MethodPost, "/events/"+privateEvent.ID.String()+"/ticket-types", map[string]any{
			"name":     "Standard",
			"amount":   12.5,
			"quantity": 2,
		}, authHeaders(organizerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertErrorMessage(t, body, "ticketing is only available for public events")
	})

	t.Run("POST ticket-types is organizer-only", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/events/"+event.ID.String()+"/ticket-types", map[string]any{
			"name":     "Standard",
			"amount":   12.5,
			"quantity": 2,
		}, authHeaders(strangerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertErrorMessage(t, body, "only organizers can create ticket types")
	})

	t.Run("POST ticket-types creates a capacity-bound type", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/events/"+event.ID.String()+"/ticket-types", map[string]any{
			"name":     "Standard",
			"amount":   12.5,
			"quantity": 2,
		}, authHeaders(organizerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)
		ticketTypeID = body["id"].(string)

		if body["soldCount"] != float64(0) {
			t.Fatalf("expected soldCount to start at 0, got %v", body["soldCount"])
		}
	})

	t.Run("GET ticket-types is public", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/events/"+event.ID.String()+"/ticket-types", nil, nil)
		assertStatus(t, resp, http.StatusOK)
		types := decodeJSONSlice(t, resp)
		if len(types) != 1 {
			t.Fatalf("expected one ticket type, got %d", len(types))
		}
	})

	t.Run("POST /tickets/purchase needs no account and counts the sale", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/tickets/purchase", map[string]any{
			"ticketTypeId": ticketTypeID,
			"firstName":    "Paul",
			"lastName":     "Dupont",
			"address":      "1 rue des Lilas",
			"buyerEmail":   "paul@test.com",
		}, nil)
		assertStatus(t, resp, http.StatusCreated)

		var ticketType models.TicketType
		if err := env.db.First(&ticketType, "id = ?", ticketTypeID).Error; err != nil {
			t.Fatalf("failed reloading ticket type: %v", err)
		}
		if ticketType.SoldCount != 1 {
			t.Fatalf("expected soldCount 1 after the sale, got %d", ticketType.SoldCount)
		}
	})

	t.Run("POST /tickets/purchase same buyer and type is rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/tickets/purchase", map[string]any{
			"ticketTypeId": ticketTypeID,
			"firstName":    "Paul",
			"lastName":     "Dupont",
			"address":      "1 rue des Lilas",
			"buyerEmail":   "paul@test.com",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertErrorMessage(t, body, "only one ticket per type per buyer")
	})

	t.Run("POST /tickets/purchase past capacity is rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/tickets/purchase", map[string]any{
			"ticketTypeId": ticketTypeID,
			"firstName":    "Jeanne",
			"lastName":     "Morel",
			"address":      "2 rue des Lilas",
			"buyerEmail":   "jeanne@test.com",
		}, nil)
		assertStatus(t, resp, http.StatusCreated)

		soldOut := performJSONRequest(t, env.app, http.MethodPost, "/tickets/purchase", map[string]any{
			"ticketTypeId": ticketTypeID,
			"firstName":    "Luc",
			"lastName":     "Bernard",
			"address":      "3 rue des Lilas",
			"buyerEmail":   "luc@test.com",
		}, nil)
		body := decodeJSONMap(t, soldOut)
		assertStatus(t, soldOut, http.StatusBadRequest)
		assertErrorMessage(t, body, "no tickets left")
	})

	t.Run("GET tickets is organizer-only", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/events/"+event.ID.String()+"/tickets", nil, authHeaders(strangerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertErrorMessage(t, body, "organizer access required")

		ok := performRequest(t, env.app, http.MethodGet, "/events/"+event.ID.String()+"/tickets", nil, authHeaders(organizerToken))
		assertStatus(t, ok, http.StatusOK)
		tickets := decodeJSONSlice(t, ok)
		if len(tickets) != 2 {
			t.Fatalf("expected the two sold tickets, got %d", len(tickets))
		}
	})
}
