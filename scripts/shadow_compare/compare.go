package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
	// IDsOnly compares the ordered list of element ids instead of whole bodies.
	IDsOnly bool `json:"ids_only"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

// defaultTargets cover the public read endpoints whose results must match the legacy service.
var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/offers", Critical: true, IDsOnly: true},
	{Method: http.MethodGet, Path: "/offers?order=salary-max", Critical: true, IDsOnly: true},
	{Method: http.MethodGet, Path: "/offers?order=salary-min", Critical: true, IDsOnly: true},
	{Method: http.MethodGet, Path: "/offers?salary_from=16000&salary_to=20000", Critical: true, IDsOnly: true},
	{Method: http.MethodGet, Path: "/professions", Critical: false, IDsOnly: true},
	{Method: http.MethodGet, Path: "/specializations", Critical: false, IDsOnly: true},
	{Method: http.MethodGet, Path: "/agreement-types", Critical: false, IDsOnly: true},
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func (c comparison) breaking() bool {
	if !c.Target.Critical {
		return false
	}
	return c.Error != nil || !c.StatusMatch || !c.BodyMatch
}

func loadTargets(path string) ([]target, error) {
	if path == "" {
		return defaultTargets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, goBase, legacyBase string, tgt target) comparison {
	comp := comparison{Target: tgt}

	goStatus, goBody, goDur, err := fetch(client, goBase, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("go request failed: %w", err)
		return comp
	}
	legacyStatus, legacyBody, legacyDur, err := fetch(client, legacyBase, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", err)
		return comp
	}

	comp.GoStatus, comp.LegacyStatus = goStatus, legacyStatus
	comp.DurationGo, comp.DurationLegacy = goDur, legacyDur
	comp.StatusMatch = goStatus == legacyStatus

	goPayload, err := unwrapEnvelope(goBody)
	if err != nil {
		comp.Error = fmt.Errorf("decode go body: %w", err)
		return comp
	}
	if tgt.IDsOnly {
		comp.BodyMatch = idsEqual(goPayload, legacyBody)
	} else {
		comp.BodyMatch = bodiesEqual(goPayload, legacyBody)
	}
	return comp
}

func fetch(client *http.Client, base string, tgt target) (int, []byte, time.Duration, error) {
	if client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// unwrapEnvelope returns the data member of a response envelope. Bodies without one are returned unchanged.
func unwrapEnvelope(body []byte) ([]byte, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, err
		}
		return body, nil
	}
	if envelope.Data == nil {
		return body, nil
	}
	return envelope.Data, nil
}

func idsEqual(a, b []byte) bool {
	aIDs, errA := elementIDs(a)
	bIDs, errB := elementIDs(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(aIDs, bIDs)
}

func elementIDs(body []byte) ([]string, error) {
	var items []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}
