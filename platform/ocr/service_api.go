package ocr

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	platform "github.com/chequebase/chequebase-ai/platform"
)

/* handleProcessRequest runs the recognize and publish workflow for one
receipt while keeping track of progress and results via the jobTracker */
func handleProcessRequest(key string, worker *RecognitionWorker, tracker *jobTracker) {
	tracker.begin(key)
	textKey, err := worker.ProcessReceipt(context.Background(), key)
	if err != nil {
		log.Println(err)
		tracker.fail(key)
		return
	}
	tracker.finish(key, textKey)
}

/* StartRecognitionAPI starts the API used to manually trigger receipt
text recognition and check on running recognition jobs */
func StartRecognitionAPI(listenAddr string, worker *RecognitionWorker) {
	tracker := newJobTracker()
	recognitionAPI := http.NewServeMux()

	// Start a new recognition job
	recognitionAPI.HandleFunc(platform.RecognitionServiceAPIProcessResource,
		func(resp http.ResponseWriter, req *http.Request) {
			key := req.URL.Query().Get(platform.ObjectKeyParam)
			if key == "" || skippable(key) {
				resp.WriteHeader(http.StatusBadRequest)
				return
			}
			go handleProcessRequest(key, worker, tracker)
		})

	// Check status of a recognition job and retrieve the text object key
	recognitionAPI.HandleFunc(platform.RecognitionServiceAPIStatusResource,
		func(resp http.ResponseWriter, req *http.Request) {
			key := req.URL.Query().Get(platform.ObjectKeyParam)
			state, err := tracker.lookup(key)
			if err != nil {
				log.Println(err)
				resp.WriteHeader(http.StatusInternalServerError)
				return
			}

			response := platform.StatusResponse{Status: state.Status}
			switch state.Status {
			case platform.FinishedProcessing:
				response.TextObjectKey = state.TextObjectKey
				tracker.drop(key)
			case platform.FailedProcessing:
				tracker.drop(key)
			}

			if err = json.NewEncoder(resp).Encode(&response); err != nil {
				log.Println(err)
				resp.WriteHeader(http.StatusInternalServerError)
			}
		})

	log.Fatal(http.ListenAndServe(listenAddr, recognitionAPI))
}
