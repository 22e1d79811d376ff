package imports

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// importMessage is the wire shape of one queued import request
type importMessage struct {
	ConnectionID string `json:"connectionId"`
	Data         string `json:"data"`
}

// ImportResult carries the outcome of one CSV import back to the client
type ImportResult struct {
	Invites     []Employee `json:"invites"`
	FailedUsers []Employee `json:"failedUsers"`
}

// importReply wraps the result in the envelope socket clients expect
type importReply struct {
	DataModels ImportResult `json:"data_models"`
}

// ReplyPusher represents a way to deliver an import result to a live connection
type ReplyPusher interface {
	Push(connectionID string, message []byte) error
}

/*
ImportWorker consumes queued import requests, turns the CSV payload into
invites, and pushes the result back out the requesting connection. The user
importer is optional: when present, invites are also written to the user
directory under the session's organization
*/
type ImportWorker struct {
	sessions SessionRegistry
	mapper   RowMapper
	importer UserImporter
	pusher   ReplyPusher
}

func NewImportWorker(sessions SessionRegistry, mapper RowMapper, importer UserImporter, pusher ReplyPusher) *ImportWorker {
	return &ImportWorker{
		sessions: sessions,
		mapper:   mapper,
		importer: importer,
		pusher:   pusher,
	}
}

// processCSV maps, falls back, and validates one CSV payload
func (w *ImportWorker) processCSV(ctx context.Context, content string) (*ImportResult, error) {
	structured, failedRows, err := ParseEmployeeCSV(content)
	if err != nil {
		return nil, err
	}

	// Rows the heuristics could not place get a model fallback
	if len(failedRows) > 0 && w.mapper != nil {
		log.Printf("Falling back to the mapping model for %d rows\n", len(failedRows))
		for _, row := range failedRows {
			employee, err := w.mapper.MapRow(ctx, row)
			if err != nil {
				log.Printf("Skipping row due to model error: %v\n", err)
				continue
			}
			structured = append(structured, employee)
		}
	}

	result := &ImportResult{
		Invites:     make([]Employee, 0, len(structured)),
		FailedUsers: make([]Employee, 0),
	}
	for _, employee := range structured {
		if !validateEmployee(employee) {
			result.FailedUsers = append(result.FailedUsers, employee)
			continue
		}
		if employee.Role == "" {
			employee.Role = DefaultRole
		}
		result.Invites = append(result.Invites, employee)
	}
	return result, nil
}

func (w *ImportWorker) importInvites(ctx context.Context, connectionID string, invites []Employee) {
	if w.importer == nil || len(invites) == 0 {
		return
	}

	session, err := w.sessions.Session(connectionID)
	if err != nil {
		log.Printf("Failed to resolve session for connection %s: %v\n", connectionID, err)
		return
	}
	if session.Organization == "" {
		return
	}

	for _, employee := range invites {
		if err := w.importer.ImportEmployee(ctx, session.Organization, employee); err != nil {
			log.Printf("Failed to import %s: %v\n", employee.Email, err)
		}
	}
}

/*
HandleMessage consumes one queued import request. Requests with no live
connected session are dropped; so are payloads redelivery cannot repair.
Reply delivery is best effort
*/
func (w *ImportWorker) HandleMessage(body string) error {
	var msg importMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		log.Printf("Dropping malformed import message: %v\n", err)
		return nil
	}

	status, err := w.sessions.SessionStatus(msg.ConnectionID)
	if err != nil || status != SessionConnected {
		log.Printf("Connection ID %s is not valid or not connected\n", msg.ConnectionID)
		return nil
	}

	if msg.Data == "" {
		log.Printf("CSV content not provided for connection %s\n", msg.ConnectionID)
		return nil
	}

	ctx := context.Background()
	result, err := w.processCSV(ctx, msg.Data)
	if err != nil {
		log.Printf("Dropping unreadable CSV for connection %s: %v\n", msg.ConnectionID, err)
		return nil
	}

	w.importInvites(ctx, msg.ConnectionID, result.Invites)

	reply, err := json.Marshal(&importReply{DataModels: *result})
	if err != nil {
		return fmt.Errorf("Failed to marshal import reply: %w", err)
	}
	if err = w.pusher.Push(msg.ConnectionID, reply); err != nil {
		log.Printf("Failed to send message to websocket: %v\n", err)
	}
	return nil
}
