// Package initializer implements the discovery state machine that walks
// OBS's scene/item/filter graph at startup and populates the
// TriggerTable (spec §4.5).
package initializer

import (
	"encoding/json"
	"sync"

	"github.com/florimondmanca/obs-midi/internal/obsclient"
	"github.com/florimondmanca/obs-midi/internal/trigger"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

func sceneAction(sceneName string) contracts.Action {
	return contracts.Action{Kind: contracts.SwitchScene, SceneName: sceneName}
}

func filterAction(sourceName, filterName string) contracts.Action {
	return contracts.Action{Kind: contracts.EnableFilter, SourceName: sourceName, FilterName: filterName}
}

type obsSender interface {
	SendRequest(requestType string, requestData map[string]interface{}) (string, error)
	GetRequestData(requestID string) (map[string]interface{}, bool)
}

// Initializer drives GetSceneList -> GetSceneItemList (per scene) ->
// GetSourceFilterList (per source), parsing trigger names out of scene
// and filter names as each response arrives.
type Initializer struct {
	client obsSender
	table  *trigger.Table
	pushErr func(error)

	mu      sync.Mutex
	pending map[string]struct{}
	started bool
	done    bool
}

// New builds an Initializer targeting table, using client to issue
// discovery requests. pushErr reports a fatal *obsclient.ErrProtocol
// when OBS responds to a discovery request with requestStatus.result
// == false.
func New(client obsSender, table *trigger.Table, pushErr func(error)) *Initializer {
	return &Initializer{
		client:  client,
		table:   table,
		pushErr: pushErr,
		pending: make(map[string]struct{}),
	}
}

// Send emits the initial GetSceneList request, entering AwaitingScenes.
func (ini *Initializer) Send() error {
	id, err := ini.client.SendRequest("GetSceneList", nil)
	if err != nil {
		return err
	}
	ini.mu.Lock()
	ini.started = true
	ini.pending[id] = struct{}{}
	ini.mu.Unlock()
	return nil
}

// IsDone reports whether every outstanding discovery request has been
// answered. False before Send is called.
func (ini *Initializer) IsDone() bool {
	ini.mu.Lock()
	defer ini.mu.Unlock()
	return ini.started && ini.done
}

// OnEvent is the ObsEventPump handler: it ignores frames that are not
// responses to requests this Initializer issued, and drives the state
// machine for the ones that are.
func (ini *Initializer) OnEvent(frame *obsclient.Frame) {
	if frame == nil {
		return
	}
	resp, ok := frame.AsResponse()
	if !ok {
		return
	}

	ini.mu.Lock()
	_, tracked := ini.pending[resp.RequestID]
	if !tracked {
		ini.mu.Unlock()
		return
	}
	delete(ini.pending, resp.RequestID)
	ini.mu.Unlock()

	if !resp.RequestStatus.Result {
		if ini.pushErr != nil {
			ini.pushErr(&obsclient.ErrProtocol{Detail: "discovery request " + resp.RequestType + " failed: " + resp.RequestStatus.Comment})
		}
		ini.markDoneIfEmpty()
		return
	}

	switch resp.RequestType {
	case "GetSceneList":
		ini.handleSceneList(resp)
	case "GetSceneItemList":
		ini.handleSceneItemList(resp)
	case "GetSourceFilterList":
		ini.handleSourceFilterList(resp)
	}

	ini.markDoneIfEmpty()
}

type sceneListResponse struct {
	Scenes []struct {
		SceneName string `json:"sceneName"`
	} `json:"scenes"`
}

func (ini *Initializer) handleSceneList(resp obsclient.ResponsePayload) {
	var payload sceneListResponse
	if err := json.Unmarshal(resp.ResponseData, &payload); err != nil {
		if ini.pushErr != nil {
			ini.pushErr(&obsclient.ErrProtocol{Detail: "malformed GetSceneList response: " + err.Error()})
		}
		return
	}

	// Parse-and-insert happens inline here, before any GetSceneItemList
	// is even sent, so every scene-derived binding precedes every
	// filter-derived binding (spec §4.5 ordering guarantee).
	for _, scene := range payload.Scenes {
		if t, ok := trigger.Parse(scene.SceneName); ok {
			ini.table.Insert(t, sceneAction(scene.SceneName))
		}
	}

	for _, scene := range payload.Scenes {
		id, err := ini.client.SendRequest("GetSceneItemList", map[string]interface{}{"sceneName": scene.SceneName})
		if err != nil {
			if ini.pushErr != nil {
				ini.pushErr(err)
			}
			continue
		}
		ini.mu.Lock()
		ini.pending[id] = struct{}{}
		ini.mu.Unlock()
	}
}

type sceneItemListResponse struct {
	SceneItems []struct {
		SourceName string `json:"sourceName"`
	} `json:"sceneItems"`
}

func (ini *Initializer) handleSceneItemList(resp obsclient.ResponsePayload) {
	var payload sceneItemListResponse
	if err := json.Unmarshal(resp.ResponseData, &payload); err != nil {
		if ini.pushErr != nil {
			ini.pushErr(&obsclient.ErrProtocol{Detail: "malformed GetSceneItemList response: " + err.Error()})
		}
		return
	}

	for _, item := range payload.SceneItems {
		id, err := ini.client.SendRequest("GetSourceFilterList", map[string]interface{}{"sourceName": item.SourceName})
		if err != nil {
			if ini.pushErr != nil {
				ini.pushErr(err)
			}
			continue
		}
		ini.mu.Lock()
		ini.pending[id] = struct{}{}
		ini.mu.Unlock()
	}
}

type sourceFilterListResponse struct {
	Filters []struct {
		FilterName string `json:"filterName"`
	} `json:"filters"`
}

func (ini *Initializer) handleSourceFilterList(resp obsclient.ResponsePayload) {
	sourceName := ""
	if data, ok := ini.client.GetRequestData(resp.RequestID); ok {
		if name, ok := data["sourceName"].(string); ok {
			sourceName = name
		}
	}

	var payload sourceFilterListResponse
	if err := json.Unmarshal(resp.ResponseData, &payload); err != nil {
		if ini.pushErr != nil {
			ini.pushErr(&obsclient.ErrProtocol{Detail: "malformed GetSourceFilterList response: " + err.Error()})
		}
		return
	}

	for _, filter := range payload.Filters {
		if t, ok := trigger.Parse(filter.FilterName); ok {
			ini.table.Insert(t, filterAction(sourceName, filter.FilterName))
		}
	}
}

func (ini *Initializer) markDoneIfEmpty() {
	ini.mu.Lock()
	defer ini.mu.Unlock()
	if len(ini.pending) == 0 {
		ini.done = true
	}
}
