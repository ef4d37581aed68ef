package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"chat-relay/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func getWithAuth(t *testing.T, url, header string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAuthHandlers_SignupLoginConnect(t *testing.T) {
	srv := newTestServer(t)
	creds := models.CredentialsRequest{Username: "alice", Password: "wonderland"}

	resp, body := postJSON(t, srv.URL+"/api/auth/signup", creds)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User created successfully", body["message"])

	resp, body = postJSON(t, srv.URL+"/api/auth/signup", creds)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already exists", body["message"])

	resp, body = postJSON(t, srv.URL+"/api/auth/login", models.CredentialsRequest{Username: "alice", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["message"])

	resp, body = postJSON(t, srv.URL+"/api/auth/login", models.CredentialsRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username and password are required", body["message"])

	resp, body = postJSON(t, srv.URL+"/api/auth/login", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	userID, _ := body["userId"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, userID)

	conn, _, err := websocket.DefaultDialer.Dial(srv.wsURL(token), nil)
	require.NoError(t, err)
	defer conn.Close()

	sendEvent(t, conn, models.EventPing, nil)
	readUntil(t, conn, models.EventPong, nil)
	assert.Equal(t, []models.OnlineEntry{{UserID: userID}}, srv.registry.Snapshot())
}

func TestMessageHandlers_History(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.connect(t, "alice")
	srv.connect(t, "bob")

	for _, content := range []string{"Hello Bob", "how are you?"} {
		sendEvent(t, alice, models.EventMessage, models.ChatMessage{Sender: "alice", Recipient: "bob", Content: content})
		readUntil(t, alice, models.EventMessage, nil)
	}

	bearer := "Bearer " + srv.token(t, "bob")

	resp := getWithAuth(t, srv.URL+"/api/messages/alice", bearer)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.PersistedMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 2)
	assert.Equal(t, "Hello Bob", all[0].Content)
	assert.Equal(t, "how are you?", all[1].Content)

	resp = getWithAuth(t, srv.URL+"/api/messages/search/alice?query=hello", bearer)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []models.PersistedMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	require.Len(t, found, 1)
	assert.Equal(t, "Hello Bob", found[0].Content)

	resp = getWithAuth(t, srv.URL+"/api/messages/alice", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = getWithAuth(t, srv.URL+"/api/messages/alice", "Bearer forged")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_HealthAndRoot(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
