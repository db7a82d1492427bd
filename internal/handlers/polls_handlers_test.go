package handlers

import (
	"net/http"
	"testing"
)

func TestPollEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	organizer, organizerToken := createTestUser(t, env.db, "poll-organizer@test.com")
	voter, voterToken := createTestUser(t, env.db, "poll-voter@test.com")
	_, strangerToken := createTestUser(t, env.db, "poll-stranger@test.com")
	event := createTestEvent(t, env.db, organizer)
	addParticipant(t, env.db, event, voter)

	var pollID string

	t.Run("POST /polls rejects a question with fewer than two options", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/polls/", map[string]any{
			"eventId": event.ID.String(),
			"title":   "Menu",
			"questions": []map[string]any{
				{"question": "Main course?", "options": []string{"pizza"}},
			},
		}, authHeaders(organizerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertErrorMessage(t, body, "Validation error")
	})

	t.Run("POST /polls is organizer-only", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/polls/", map[string]any{
			"eventId": event.ID.String(),
			"title":   "Menu",
			"questions": []map[string]any{
				{"question": "Main course?", "options": []string{"pizza", "salad"}},
			},
		}, authHeaders(voterToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertErrorMessage(t, body, "only organizers can create polls")
	})

	t.Run("POST /polls creates questions in order", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/polls/", map[string]any{
			"eventId": event.ID.String(),
			"title":   "Menu",
			"questions": []map[string]any{
				{"question": "Main course?", "options": []string{"pizza", "salad"}},
				{"question": "Dessert?", "options": []string{"cake", "fruit", "none"}},
			},
		}, authHeaders(organizerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)
		pollID = body["id"].(string)

		questions := body["questions"].([]any)
		if len(questions) != 2 {
			t.Fatalf("expected two questions, got %d", len(questions))
		}
		first := questions[0].(map[string]any)
		if first["question"] != "Main course?" {
			t.Fatalf("expected questions in creation order, got %+v", first)
		}
	})

	t.Run("POST vote is participant-only", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/polls/"+pollID+"/vote", map[string]any{
			"answers": []map[string]any{
				{"questionIndex": 0, "chosenOptionIndex": 1},
			},
		}, authHeaders(strangerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertErrorMessage(t, body, "only participants can vote")
	})

	t.Run("POST vote records the response", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/polls/"+pollID+"/vote", map[string]any{
			"answers": []map[string]any{
				{"questionIndex": 0, "chosenOptionIndex": 1},
				{"questionIndex": 1, "chosenOptionIndex": 0},
			},
		}, authHeaders(voterToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)

		responses := body["responses"].([]any)
		if len(responses) != 1 {
			t.Fatalf("expected one recorded response, got %d", len(responses))
		}
	})

	t.Run("POST vote a second time is rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/polls/"+pollID+"/vote", map[string]any{
			"answers": []map[string]any{
				{"questionIndex": 0, "chosenOptionIndex": 0},
			},
		}, authHeaders(voterToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertErrorMessage(t, body, "you have already voted")
	})

	t.Run("GET /events/:eventId/polls lists the event's polls", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/events/"+event.ID.String()+"/polls", nil, nil)
		assertStatus(t, resp, http.StatusOK)
		polls := decodeJSONSlice(t, resp)
		if len(polls) != 1 {
			t.Fatalf("expected one poll, got %d", len(polls))
		}
	})

	t.Run("GET /polls/:id populates the creator", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/polls/"+pollID, nil, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)

		createdBy, ok := body["createdBy"].(map[string]any)
		if !ok || createdBy["id"] != organizer.ID.String() {
			t.Fatalf("expected the creator populated, got %+v", body)
		}
	})
}
