package http

import (
	"encoding/json"
	"time"

	"github.com/threadchat/threadchat-server/internal/core"
	"github.com/threadchat/threadchat-server/internal/proto"
)

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeCreateThread:
		var data proto.CreateThreadData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Title == "" {
			return nil, badRequest("title is required"), nil
		}
		return &core.Command{
			Kind:        core.CommandCreateThread,
			Title:       data.Title,
			Description: data.Description,
		}, nil, nil
	case proto.InboundTypeJoinThread:
		var data proto.JoinThreadData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ThreadID == "" {
			return nil, badRequest("thread_id is required"), nil
		}
		return &core.Command{Kind: core.CommandJoinThread, ThreadID: data.ThreadID}, nil, nil
	case proto.InboundTypePublicMessage:
		var data proto.PublicMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ThreadID == "" {
			return nil, badRequest("thread_id is required"), nil
		}
		return &core.Command{
			Kind:     core.CommandPublicMessage,
			ThreadID: data.ThreadID,
			Body:     data.Message,
		}, nil, nil
	case proto.InboundTypeReactMessage:
		var data proto.ReactMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ThreadID == "" || data.MessageID == "" || data.Emoji == "" {
			return nil, badRequest("thread_id, message_id and emoji are required"), nil
		}
		return &core.Command{
			Kind:      core.CommandReactMessage,
			ThreadID:  data.ThreadID,
			MessageID: data.MessageID,
			Emoji:     data.Emoji,
		}, nil, nil
	case proto.InboundTypeStartPrivateChat:
		var data proto.StartPrivateChatData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.TargetUser == "" {
			return nil, badRequest("target_user is required"), nil
		}
		return &core.Command{Kind: core.CommandStartPrivateChat, TargetUser: data.TargetUser}, nil, nil
	case proto.InboundTypeJoinPrivateChat:
		var data proto.JoinPrivateChatData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, badRequest("room_id is required"), nil
		}
		return &core.Command{Kind: core.CommandJoinPrivateChat, RoomID: data.RoomID}, nil, nil
	case proto.InboundTypePrivateMessage:
		var data proto.PrivateMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, badRequest("room_id is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandPrivateMessage,
			RoomID: data.RoomID,
			Body:   data.Message,
		}, nil, nil
	case proto.InboundTypeStartScreenShare, proto.InboundTypeStopScreenShare:
		var data proto.ScreenShareData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, badRequest("room_id is required"), nil
		}
		kind := core.CommandStartScreenShare
		if inbound.Type == proto.InboundTypeStopScreenShare {
			kind = core.CommandStopScreenShare
		}
		return &core.Command{Kind: kind, RoomID: data.RoomID}, nil, nil
	case proto.InboundTypeScreenShareOffer:
		var data proto.ScreenShareOfferData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, badRequest("room_id is required"), nil
		}
		return &core.Command{
			Kind:    core.CommandScreenShareOffer,
			RoomID:  data.RoomID,
			Payload: data.Offer,
		}, nil, nil
	case proto.InboundTypeScreenShareAnswer:
		var data proto.ScreenShareAnswerData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.TargetUser == "" {
			return nil, badRequest("target_user is required"), nil
		}
		return &core.Command{
			Kind:       core.CommandScreenShareAnswer,
			RoomID:     data.RoomID,
			TargetUser: data.TargetUser,
			Payload:    data.Answer,
		}, nil, nil
	case proto.InboundTypeScreenShareICE:
		var data proto.ScreenShareICEData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, badRequest("room_id is required"), nil
		}
		return &core.Command{
			Kind:    core.CommandScreenShareICECandidate,
			RoomID:  data.RoomID,
			Payload: data.Candidate,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func threadInfos(threads []core.Thread) []proto.ThreadInfo {
	out := make([]proto.ThreadInfo, 0, len(threads))
	for _, t := range threads {
		out = append(out, proto.ThreadInfo{
			ID:           t.ID,
			Title:        t.Title,
			Description:  t.Description,
			CreatedBy:    t.CreatedBy,
			MessageCount: t.MessageCount,
		})
	}
	return out
}

func publicMessageInfo(m core.PublicMessage) proto.PublicMessageInfo {
	reactions := m.Reactions
	if reactions == nil {
		reactions = map[string][]string{}
	}
	return proto.PublicMessageInfo{
		ID:        m.ID,
		Username:  m.Author,
		Message:   m.Body,
		Timestamp: m.CreatedAt.Format(time.RFC3339),
		Reactions: reactions,
	}
}

func publicMessageInfos(msgs []core.PublicMessage) []proto.PublicMessageInfo {
	out := make([]proto.PublicMessageInfo, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, publicMessageInfo(m))
	}
	return out
}

func privateMessageInfo(m core.PrivateMessage) proto.PrivateMessageInfo {
	return proto.PrivateMessageInfo{
		Username:  m.Author,
		Message:   m.Body,
		Timestamp: m.CreatedAt.Format(time.RFC3339),
	}
}

func privateMessageInfos(msgs []core.PrivateMessage) []proto.PrivateMessageInfo {
	out := make([]proto.PrivateMessageInfo, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, privateMessageInfo(m))
	}
	return out
}

func event(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventUserList:
		return event(proto.EventUserListUpdated, proto.EventUserListData{Users: ev.Users})
	case core.EventThreadList:
		return event(proto.EventThreadsUpdated, proto.EventThreadsData{Threads: threadInfos(ev.Threads)})
	case core.EventThreadMessages:
		return event(proto.EventThreadMessages, proto.EventThreadMessagesData{
			ThreadID: ev.ThreadID,
			Messages: publicMessageInfos(ev.Messages),
		})
	case core.EventPublicMessage:
		return event(proto.EventPublicMessageReceived, publicMessageInfo(*ev.Message))
	case core.EventPrivateInvitation:
		return event(proto.EventPrivateChatInvitation, proto.EventPrivateInvitationData{
			FromUser: ev.From,
			RoomID:   ev.RoomID,
		})
	case core.EventPrivateStarted:
		return event(proto.EventPrivateChatStarted, proto.EventPrivateStartedData{
			RoomID:     ev.RoomID,
			TargetUser: ev.TargetUser,
			Messages:   privateMessageInfos(ev.History),
		})
	case core.EventPrivateMessages:
		return event(proto.EventPrivateChatMessages, proto.EventPrivateMessagesData{
			RoomID:   ev.RoomID,
			Messages: privateMessageInfos(ev.History),
		})
	case core.EventPrivateJoined:
		return event(proto.EventPrivateChatJoined, proto.EventPrivateJoinedData{
			RoomID:   ev.RoomID,
			Username: ev.From,
		})
	case core.EventPrivateMessage:
		return event(proto.EventPrivateMessageReceived, privateMessageInfo(*ev.Private))
	case core.EventScreenShareStarted:
		return event(proto.EventScreenShareStarted, proto.EventScreenShareData{Username: ev.From, RoomID: ev.RoomID})
	case core.EventScreenShareStopped:
		return event(proto.EventScreenShareStopped, proto.EventScreenShareData{Username: ev.From, RoomID: ev.RoomID})
	case core.EventScreenShareOffer:
		return event(proto.EventScreenShareOfferRecv, proto.EventScreenShareOfferData{Offer: ev.Payload, FromUser: ev.From})
	case core.EventScreenShareAnswer:
		return event(proto.EventScreenShareAnswerRecv, proto.EventScreenShareAnswerData{Answer: ev.Payload})
	case core.EventScreenShareICECandidate:
		return event(proto.EventScreenShareICERecv, proto.EventScreenShareICEData{Candidate: ev.Payload, FromUser: ev.From})
	case core.EventError:
		if ev.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: ev.Error.Code, Msg: ev.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
