package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestPhotoAlbumEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	organizer, organizerToken := createTestUser(t, env.db, "album-organizer@test.com")
	_, strangerToken := createTestUser(t, env.db, "album-stranger@test.com")
	event := createTestEvent(t, env.db, organizer)

	var albumID, photoID string

	t.Run("POST /photo-albums unknown event is not found", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/photo-albums/", map[string]any{
			"eventId": uuid.NewString(),
		}, authHeaders(organizerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertErrorMessage(t, body, "event not found")
	})

	t.Run("POST /photo-albums defaults the album name", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/photo-albums/", map[string]any{
			"eventId": event.ID.String(),
		}, authHeaders(organizerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)
		albumID = body["id"].(string)

		if body["name"] != "Album photos" {
			t.Fatalf("expected the default album name, got %v", body["name"])
		}
	})

	t.Run("POST photos requires event membership", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/photo-albums/"+albumID+"/photos", map[string]any{
			"url": "https://cdn.test/photo.jpg",
		}, authHeaders(strangerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertErrorMessage(t, body, "only participants or organizers can post photos")
	})

	t.Run("POST photos records poster and URL", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/photo-albums/"+albumID+"/photos", map[string]any{
			"url": "https://cdn.test/photo.jpg",
		}, authHeaders(organizerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)
		photoID = body["id"].(string)

		postedBy, ok := body["postedBy"].(map[string]any)
		if !ok || postedBy["id"] != organizer.ID.String() {
			t.Fatalf("expected the poster to be populated, got %+v", body)
		}
	})

	t.Run("POST photos/upload without storage is unavailable", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("photo", "picnic.jpg")
		if err != nil {
			t.Fatalf("failed building multipart body: %v", err)
		}
		if _, err := part.Write([]byte("fake-jpeg-bytes")); err != nil {
			t.Fatalf("failed writing multipart body: %v", err)
		}
		_ = writer.Close()

		resp := performRequest(t, env.app, http.MethodPost, "/photo-albums/"+albumID+"/photos/upload", &buf, map[string]string{
			"Authorization": "Bearer " + organizerToken,
			"Content-Type":  writer.FormDataContentType(),
		})
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusServiceUnavailable)
		assertErrorMessage(t, body, "photo storage not configured")
	})

	t.Run("POST comments is open to any authenticated user", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/photos/"+photoID+"/comments", map[string]any{
			"content": "Great shot!",
		}, authHeaders(strangerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		author, ok := body["author"].(map[string]any)
		if !ok || author["email"] != "album-stranger@test.com" {
			t.Fatalf("expected the comment author populated, got %+v", body)
		}
	})

	t.Run("POST comments unknown photo is not found", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/photos/"+uuid.NewString()+"/comments", map[string]any{
			"content": "lost",
		}, authHeaders(strangerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertErrorMessage(t, body, "photo not found")
	})

	t.Run("GET /photo-albums/:id populates photos, posters and comments", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/photo-albums/"+albumID, nil, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)

		photos := body["photos"].([]any)
		if len(photos) != 1 {
			t.Fatalf("expected one photo, got %d", len(photos))
		}
		photo := photos[0].(map[string]any)
		comments := photo["comments"].([]any)
		if len(comments) != 1 {
			t.Fatalf("expected one comment, got %d", len(comments))
		}
		commentAuthor := comments[0].(map[string]any)["author"].(map[string]any)
		if commentAuthor["email"] != "album-stranger@test.com" {
			t.Fatalf("expected the comment author populated, got %+v", commentAuthor)
		}
	})

	t.Run("GET /events/:eventId/photo-albums lists the event's albums", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/events/"+event.ID.String()+"/photo-albums", nil, nil)
		assertStatus(t, resp, http.StatusOK)
		albums := decodeJSONSlice(t, resp)
		if len(albums) != 1 {
			t.Fatalf("expected one album for the event, got %d", len(albums))
		}
	})
}
