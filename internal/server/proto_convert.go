package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func num(v float64) *structpb.Value  { return structpb.NewNumberValue(v) }
func str(v string) *structpb.Value   { return structpb.NewStringValue(v) }
func boolean(v bool) *structpb.Value { return structpb.NewBoolValue(v) }

func object(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func list(values []*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func vecToProto(v vecDTO) *structpb.Value {
	return object(map[string]*structpb.Value{"x": num(v.X), "y": num(v.Y), "z": num(v.Z)})
}

// Convert internal missile to protobuf message
func missileToProto(m missileDTO) *structpb.Value {
	return object(map[string]*structpb.Value{
		"id":     str(m.ID),
		"class":  str(m.Class),
		"owner":  str(m.Owner),
		"self":   boolean(m.Self),
		"mode":   str(m.Mode),
		"state":  str(m.State),
		"pos":    vecToProto(m.Pos),
		"vel":    vecToProto(m.Vel),
		"pitch":  num(m.Pitch),
		"yaw":    num(m.Yaw),
		"health": num(m.Health),
		"homing": num(m.Homing),
		"guided": boolean(m.Guided),
	})
}

func designatorToProto(d designatorDTO) *structpb.Value {
	fields := map[string]*structpb.Value{
		"id":      str(d.ID),
		"owner":   str(d.Owner),
		"self":    boolean(d.Self),
		"pos":     vecToProto(d.Pos),
		"on":      boolean(d.On),
		"visible": boolean(d.Visible),
	}
	if d.Target != "" {
		fields["target"] = str(d.Target)
	}
	return object(fields)
}

func bodyToProto(b bodyDTO) *structpb.Value {
	return object(map[string]*structpb.Value{
		"id":     str(b.ID),
		"class":  str(b.Class),
		"name":   str(b.Name),
		"self":   boolean(b.Self),
		"pos":    vecToProto(b.Pos),
		"vel":    vecToProto(b.Vel),
		"mins":   vecToProto(b.Mins),
		"maxs":   vecToProto(b.Maxs),
		"health": num(b.Health),
		"team":   num(float64(b.Team)),
		"dying":  boolean(b.Dying),
	})
}

func launcherToProto(l launcherDTO) *structpb.Value {
	return object(map[string]*structpb.Value{
		"id":           str(l.ID),
		"ammo":         num(float64(l.Ammo)),
		"guiding":      boolean(l.Guiding),
		"apc":          boolean(l.APC),
		"ready":        boolean(l.Ready),
		"not_ready":    str(l.NotReady),
		"next_fire":    num(l.NextFireAt),
		"reload_until": num(l.ReloadUntil),
		"missile":      str(l.Missile),
	})
}

// Convert internal stateMsg to a protobuf struct
func stateToProto(s stateMsg) *structpb.Struct {
	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		"now":  num(s.Now),
		"room": str(s.Room),
		"me":   str(s.Me),
	}}
	if s.Launcher != nil {
		msg.Fields["launcher"] = launcherToProto(*s.Launcher)
	}

	missiles := make([]*structpb.Value, len(s.Missiles))
	for i, m := range s.Missiles {
		missiles[i] = missileToProto(m)
	}
	msg.Fields["missiles"] = list(missiles)

	dots := make([]*structpb.Value, len(s.Designators))
	for i, d := range s.Designators {
		dots[i] = designatorToProto(d)
	}
	msg.Fields["designators"] = list(dots)

	bodies := make([]*structpb.Value, len(s.Bodies))
	for i, b := range s.Bodies {
		bodies[i] = bodyToProto(b)
	}
	msg.Fields["bodies"] = list(bodies)

	dangers := make([]*structpb.Value, len(s.Dangers))
	for i, d := range s.Dangers {
		dangers[i] = object(map[string]*structpb.Value{
			"pos":     vecToProto(d.Pos),
			"radius":  num(d.Radius),
			"expires": num(d.ExpiresAt),
		})
	}
	msg.Fields["dangers"] = list(dangers)
	return msg
}

// envelopeToProto wraps a payload the way text frames are wrapped.
func envelopeToProto(kind string, payload *structpb.Struct) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    str(kind),
		"payload": structpb.NewStructValue(payload),
	}}
}

func marshalEnvelope(kind string, payload *structpb.Struct) ([]byte, error) {
	data, err := proto.Marshal(envelopeToProto(kind, payload))
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}
	return data, nil
}

// inboundFromProto decodes a binary command frame into the same shape text
// frames use.
func inboundFromProto(data []byte) (inboundMessage, error) {
	var envelope structpb.Struct
	if err := proto.Unmarshal(data, &envelope); err != nil {
		return inboundMessage{}, fmt.Errorf("protobuf unmarshal: %w", err)
	}
	kind := envelope.Fields["type"].GetStringValue()
	if kind == "" {
		return inboundMessage{}, fmt.Errorf("protobuf envelope without type")
	}
	msg := inboundMessage{Type: kind}
	if payload, ok := envelope.Fields["payload"]; ok {
		raw, err := protojson.Marshal(payload)
		if err != nil {
			return inboundMessage{}, fmt.Errorf("protobuf payload: %w", err)
		}
		msg.Payload = json.RawMessage(raw)
	}
	return msg, nil
}
