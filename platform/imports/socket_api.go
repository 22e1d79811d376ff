package imports

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"strings"

	platform "github.com/chequebase/chequebase-ai/platform"
	"github.com/chequebase/chequebase-ai/platform/queue"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// requestSourceIP resolves the client address, preferring the forwarding header
func requestSourceIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

/*
serveConnection reads messages off one import socket until it closes. Every
message is wrapped with the connection id and queued for the import worker.
On exit the connection is deregistered and its session marked disconnected
*/
func serveConnection(connectionID string, conn Websocket, connections ConnectionRegistry,
	sessions SessionRegistry, requests queue.Sender) {
	defer func() {
		conn.Close()
		if err := connections.Remove(connectionID); err != nil {
			log.Println(err)
		}
		if err := sessions.DisconnectSession(connectionID); err != nil {
			log.Println(err)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg := importMessage{
			ConnectionID: connectionID,
			Data:         string(data),
		}
		body, err := json.Marshal(&msg)
		if err != nil {
			log.Println(err)
			continue
		}
		if err = requests.Send(context.Background(), string(body)); err != nil {
			log.Printf("Failed to queue import request for %s: %v\n", connectionID, err)
		}
	}
}

/*
StartImportSocketAPI starts the API import clients connect to. Connections
are registered with a fresh id and a geo-resolved session; the push resource
lets workers answer a connection from outside this process
*/
func StartImportSocketAPI(listenAddr string, connections ConnectionRegistry, sessions SessionRegistry,
	countries IPCountryFinder, requests queue.Sender) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			// Add check with valid client origins for import requests
			return true
		},
	}

	socketMux := http.NewServeMux()
	socketMux.HandleFunc(platform.ImportSocketAPIConnectResource,
		func(resp http.ResponseWriter, req *http.Request) {
			organization := req.URL.Query().Get(platform.OrganizationParam)
			sourceIP := requestSourceIP(req)

			conn, err := upgrader.Upgrade(resp, req, nil)
			if err != nil {
				log.Println(err)
				return
			}

			country := UnknownCountry
			if countries != nil {
				if found, err := countries.Country(sourceIP); err == nil {
					country = found
				}
			}

			connectionID := uuid.New().String()
			ws := NewGorillaWebsocket(conn)
			if err = connections.Add(connectionID, ws); err != nil {
				log.Println(err)
				ws.Close()
				return
			}
			if err = sessions.ConnectSession(connectionID, sourceIP, country, organization); err != nil {
				log.Println(err)
				connections.Remove(connectionID)
				ws.Close()
				return
			}

			go serveConnection(connectionID, ws, connections, sessions, requests)
		})
	socketMux.HandleFunc(platform.ImportServiceAPIPushResource,
		func(resp http.ResponseWriter, req *http.Request) {
			connectionID := req.URL.Query().Get(platform.ConnectionIDParam)
			message, err := io.ReadAll(req.Body)
			if err != nil {
				log.Println(err)
				resp.WriteHeader(http.StatusInternalServerError)
				return
			}

			if err = connections.Send(connectionID, message); err != nil {
				log.Println(err)
				resp.WriteHeader(http.StatusInternalServerError)
			}
		})
	log.Fatal(http.ListenAndServe(listenAddr, socketMux))
}
