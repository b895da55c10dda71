package nakama

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"ringo/internal/domain"
)

// Messages travel as google.protobuf.Struct in its JSON form so web and
// engine clients can read them without generated code.

func encodeMessage(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return protojson.Marshal(s)
}

func decodeMessage(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(data) == 0 {
		return s, nil
	}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return s, nil
}

func toInt(v *structpb.Value) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("expected a number")
	}
	if n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, fmt.Errorf("expected an integer, got %v", n.NumberValue)
	}
	return int(n.NumberValue), nil
}

// intField reads a required integer field.
func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return n, nil
}

func intsField(s *structpb.Struct, key string) ([]int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("field %q: expected a list", key)
	}
	out := make([]int, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// resolutionsField reads an optional {"<card id>": value} object.
func resolutionsField(s *structpb.Struct, key string) (map[int]int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	obj := v.GetStructValue()
	if obj == nil {
		return nil, fmt.Errorf("field %q: expected an object", key)
	}
	out := make(map[int]int, len(obj.GetFields()))
	for k, item := range obj.GetFields() {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("field %q: bad card id %q", key, k)
		}
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		out[id] = n
	}
	return out, nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func intsValue(xs []int) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func stringsValue(xs []string) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func cardValue(c domain.Card) map[string]any {
	m := map[string]any{
		"id":    c.ID,
		"kind":  c.Kind.String(),
		"value": c.Value,
	}
	if c.IsSplit() {
		m["alt"] = c.Alt
	}
	if c.Resolved != 0 {
		m["resolved"] = c.Resolved
	}
	return m
}

func cardsValue(cards []domain.Card) []any {
	out := make([]any, len(cards))
	for i, c := range cards {
		out[i] = cardValue(c)
	}
	return out
}

func comboValue(c domain.Combo) map[string]any {
	resolutions := make(map[string]any, len(c.Resolutions))
	for id, v := range c.Resolutions {
		resolutions[strconv.Itoa(id)] = v
	}
	return map[string]any{
		"positions":   intsValue(c.Positions),
		"cards":       cardsValue(c.Cards),
		"value":       c.Value,
		"size":        c.Size,
		"resolutions": resolutions,
	}
}

func rescueOptionsValue(options []domain.RescueOption) []any {
	out := make([]any, len(options))
	for i, o := range options {
		out[i] = map[string]any{
			"insert_position": o.InsertPosition,
			"hand_positions":  intsValue(o.HandPositions),
			"combo":           comboValue(o.Combo),
		}
	}
	return out
}

// publicStateValue encodes one viewer's projection of the game.
func publicStateValue(v domain.PublicState) map[string]any {
	players := make([]any, len(v.Players))
	for i, p := range v.Players {
		players[i] = map[string]any{"id": p.ID, "name": p.Name, "hand_count": p.HandCount}
	}
	m := map[string]any{
		"id":            v.ID,
		"status":        string(v.Status),
		"phase":         string(v.Phase),
		"players":       players,
		"current_id":    v.CurrentID,
		"hand":          cardsValue(v.Hand),
		"draw_count":    v.DrawCount,
		"discard_count": v.DiscardCount,
		"winner":        v.Winner,
		"turn":          v.Turn,
	}
	if v.Table != nil {
		m["table"] = comboValue(v.Table.Combo)
		m["table_owner"] = v.Table.Owner
	}
	if v.PendingOwner != "" {
		m["pending_owner"] = v.PendingOwner
		m["pending"] = cardsValue(v.Pending)
	}
	if v.DrawnOwner != "" {
		m["drawn_owner"] = v.DrawnOwner
		if v.Drawn != nil {
			m["drawn"] = cardValue(*v.Drawn)
		}
	}
	return m
}
