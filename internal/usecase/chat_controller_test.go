package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
	"agentconsole/internal/mathresult"
)

func TestChatControllerRejectsBlankMessage(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	chat := NewChatController(api, domain.FeatureSearch, "", &fakeEventSink{}, nil)

	_, err := chat.Send(context.Background(), " \n\t ")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.total() != 0 {
		t.Fatalf("blank message reached the network")
	}
	if snapshot := chat.Snapshot(); snapshot.ErrorCode != domain.ErrorCodeValidation || snapshot.Busy {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if len(chat.History()) != 0 {
		t.Fatalf("blank message must not be recorded")
	}
}

func TestChatControllerBusyGuard(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		gate:    make(chan struct{}),
		started: make(chan string, 1),
		chat:    apiclient.ChatResponse{Response: json.RawMessage(`"pong"`)},
	}
	chat := NewChatController(api, domain.FeatureSearch, "", &fakeEventSink{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := chat.Send(context.Background(), "ping")
		done <- err
	}()
	<-api.started

	if !chat.Snapshot().Busy {
		t.Fatalf("expected controller to be busy")
	}
	if _, err := chat.Send(context.Background(), "again"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(api.gate)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if api.count("chat") != 1 {
		t.Fatalf("expected exactly one request, got %d", api.count("chat"))
	}

	history := chat.History()
	if len(history) != 2 || history[0].Text != "ping" || history[1].Text != "pong" {
		t.Fatalf("unexpected history: %+v", history)
	}
	if chat.Snapshot().Busy {
		t.Fatalf("busy flag not cleared")
	}
}

func TestChatControllerAppendsErrorEntry(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{err: &apiclient.Error{StatusCode: 500, Message: "Gemini quota exceeded"}}
	events := &fakeEventSink{}
	chat := NewChatController(api, domain.FeatureSearch, "", events, nil)

	if _, err := chat.Send(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error")
	}

	history := chat.History()
	if len(history) != 2 {
		t.Fatalf("expected user message and error entry, got %+v", history)
	}
	if entry := history[1]; !entry.Failed || entry.Role != ChatRoleAgent || entry.Text != "Gemini quota exceeded" {
		t.Fatalf("unexpected error entry: %+v", entry)
	}

	snapshot := events.lastFeature()
	if snapshot.Busy || snapshot.ErrorCode != domain.ErrorCodeAPI || snapshot.Error != "Gemini quota exceeded" {
		t.Fatalf("unexpected published snapshot: %+v", snapshot)
	}
}

func TestChatControllerMathReply(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{chat: apiclient.ChatResponse{
		Response: json.RawMessage(`"{\"text_results\":[\"x = 2\"],\"plots\":[],\"images\":[],\"success\":true}"`),
	}}
	chat := NewChatController(api, domain.FeatureMath, apiclient.SearchEngineGoogle, &fakeEventSink{}, nil)

	history, err := chat.Send(context.Background(), "solve 2x = 4")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	reply := history[len(history)-1]
	if reply.Math == nil || len(reply.Math.TextResults) != 1 || reply.Math.TextResults[0] != "x = 2" {
		t.Fatalf("unexpected math reply: %+v", reply)
	}
	if reply.Text != "x = 2" || reply.Notice != "" {
		t.Fatalf("unexpected reply text: %+v", reply)
	}

	req, _ := api.lastRequest("chat").(apiclient.ChatRequest)
	if req.Feature != string(domain.FeatureMath) || req.SearchEngine != apiclient.SearchEngineGoogle || req.Message != "solve 2x = 4" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestChatControllerComputeFailureNotice(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{math: apiclient.MathResponse{Result: json.RawMessage(`null`)}}
	chat := NewChatController(api, domain.FeatureMath, "", &fakeEventSink{}, nil)

	history, err := chat.Compute(context.Background(), "integrate nonsense")
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	reply := history[len(history)-1]
	if reply.Notice != mathresult.FailureNotice || reply.Math == nil || !reply.Math.IsEmpty() {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestChatControllerSetSearchEngine(t *testing.T) {
	t.Parallel()

	chat := NewChatController(&fakeAPI{}, domain.FeatureSearch, "", &fakeEventSink{}, nil)
	if err := chat.SetSearchEngine("bing"); err == nil {
		t.Fatalf("expected unsupported engine to be rejected")
	}
	if err := chat.SetSearchEngine(apiclient.SearchEngineSerpAPI); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.searchEngine() != apiclient.SearchEngineSerpAPI {
		t.Fatalf("engine not updated")
	}
}

func TestSmartChatImageLimitKeepsSelection(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	chat := NewSmartChatController(api, nil, &fakeEventSink{}, nil, SmartChatOptions{})

	first := []apiclient.File{pngFile(t, "a.png"), pngFile(t, "b.png"), pngFile(t, "c.png")}
	if _, err := chat.AddImages(first); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	extra := []apiclient.File{pngFile(t, "d.png"), pngFile(t, "e.png"), pngFile(t, "f.png"), pngFile(t, "g.png")}
	view, err := chat.AddImages(extra)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(view.Pending) != 3 || view.Pending[2].Name != "c.png" {
		t.Fatalf("selection changed: %+v", view.Pending)
	}
	if api.total() != 0 {
		t.Fatalf("rejected images reached the network")
	}
}

func TestSmartChatRejectsNonImage(t *testing.T) {
	t.Parallel()

	chat := NewSmartChatController(&fakeAPI{}, nil, &fakeEventSink{}, nil, SmartChatOptions{})
	view, err := chat.AddImages([]apiclient.File{pngFile(t, "a.png"), {Name: "notes.png", Data: []byte("plain text")}})
	if err == nil || len(view.Pending) != 0 {
		t.Fatalf("expected whole batch rejected, got %+v, %v", view.Pending, err)
	}
}

func TestSmartChatSendUploadsInOrder(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{smart: apiclient.SmartChatResponse{Response: "two cats", SearchPerformed: true, SearchEngine: "google"}}
	chat := NewSmartChatController(api, nil, &fakeEventSink{}, nil, SmartChatOptions{})

	if _, err := chat.AddImages([]apiclient.File{pngFile(t, "one.png"), pngFile(t, "two.png")}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	view, err := chat.Send(context.Background(), "what is in these?")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	req, _ := api.lastRequest("smart-chat").(apiclient.SmartChatRequest)
	if len(req.ImageFilenames) != 2 || req.ImageFilenames[0] != "stored-one.png" || req.ImageFilenames[1] != "stored-two.png" {
		t.Fatalf("unexpected filenames: %v", req.ImageFilenames)
	}
	if len(view.Pending) != 0 {
		t.Fatalf("sent images should leave the selection: %+v", view.Pending)
	}
	reply := view.Messages[len(view.Messages)-1]
	if reply.Text != "two cats" || !reply.SearchPerformed {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if user := view.Messages[0]; len(user.Images) != 2 {
		t.Fatalf("user message should list its images: %+v", user)
	}
}

func TestSmartChatFailureKeepsImagesQueued(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{err: &apiclient.Error{StatusCode: 413, Message: "image too large"}}
	chat := NewSmartChatController(api, nil, &fakeEventSink{}, nil, SmartChatOptions{})
	if _, err := chat.AddImages([]apiclient.File{pngFile(t, "big.png")}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	view, err := chat.Send(context.Background(), "describe")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(view.Pending) != 1 {
		t.Fatalf("images should stay queued after a failure")
	}
	if last := view.Messages[len(view.Messages)-1]; !last.Failed || last.Text != "image too large" {
		t.Fatalf("unexpected error entry: %+v", last)
	}
	if api.count("smart-chat") != 0 {
		t.Fatalf("chat should not be asked when an upload fails")
	}
}

func TestSmartChatSpeakEmptyAudio(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{}
	chat := NewSmartChatController(&fakeAPI{}, NewSpeaker(player, t.TempDir(), nil), &fakeEventSink{}, nil, SmartChatOptions{})

	if _, err := chat.Speak(context.Background(), "xin chao"); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio, got %v", err)
	}
	if code := chat.Snapshot().ErrorCode; code != domain.ErrorCodeEmptyAudio {
		t.Fatalf("unexpected error code: %q", code)
	}
	if len(player.paths) != 0 {
		t.Fatalf("nothing should be played")
	}
}

func TestSearchControllerValidation(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{search: apiclient.SearchResponse{Results: json.RawMessage(`[{"title":"Go"}]`)}}
	search := NewSearchController(api, "", 0, &fakeEventSink{}, nil)

	if _, err := search.Search(context.Background(), "  ", "", 0); err == nil {
		t.Fatalf("expected empty query to be rejected")
	}
	if _, err := search.Search(context.Background(), "golang", "", 21); err == nil {
		t.Fatalf("expected max results above 20 to be rejected")
	}
	if api.total() != 0 {
		t.Fatalf("invalid searches reached the network")
	}

	result, err := search.Search(context.Background(), "golang", "", 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	req, _ := api.lastRequest("search").(apiclient.SearchRequest)
	if req.MaxResults != 5 || req.SearchEngine != apiclient.SearchEngineDuckDuckGo {
		t.Fatalf("unexpected defaults: %+v", req)
	}
	if string(result.Results) != `[{"title":"Go"}]` {
		t.Fatalf("unexpected results: %s", result.Results)
	}
}
