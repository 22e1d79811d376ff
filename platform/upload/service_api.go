package upload

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	platform "github.com/chequebase/chequebase-ai/platform"
)

type presignRequest struct {
	CompanyID string `json:"company_id"`
	Filenames string `json:"filenames"`
}

type uploadRequest struct {
	CompanyID string        `json:"company_id"`
	Files     []FilePayload `json:"files"`
}

type uploadResponse struct {
	Message string         `json:"message"`
	Results []UploadResult `json:"results"`
}

// splitFilenames turns the comma-separated wire value into clean filenames
func splitFilenames(filenames string) []string {
	names := make([]string, 0)
	for _, name := range strings.Split(filenames, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// createPresignHandler builds the handler issuing presigned receipt upload URLs
func createPresignHandler(presigner *URLPresigner) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		var presign presignRequest
		if err := json.NewDecoder(req.Body).Decode(&presign); err != nil {
			platform.WriteErrorResponse(resp, http.StatusBadRequest, "Request body must be JSON")
			return
		}
		filenames := splitFilenames(presign.Filenames)
		if presign.CompanyID == "" || len(filenames) == 0 {
			platform.WriteErrorResponse(resp, http.StatusBadRequest,
				"Missing required parameters: company_id, filenames")
			return
		}

		urls, err := presigner.PresignAll(req.Context(), presign.CompanyID, filenames)
		if err != nil {
			log.Println(err)
			resp.WriteHeader(http.StatusInternalServerError)
			return
		}

		response := platform.PresignResponse{
			CompanyID:     presign.CompanyID,
			PresignedURLs: urls,
		}
		if err = platform.WriteJSONResponse(resp, &response); err != nil {
			log.Println(err)
		}
	}
}

// createDirectUploadHandler builds the handler storing base64 file payloads
func createDirectUploadHandler(uploader *DirectUploader) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		var request uploadRequest
		if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
			platform.WriteErrorResponse(resp, http.StatusBadRequest, "Request body must be JSON")
			return
		}
		if request.CompanyID == "" || len(request.Files) == 0 {
			platform.WriteErrorResponse(resp, http.StatusBadRequest,
				"Missing required parameters: company_id, files")
			return
		}

		results, err := uploader.UploadAll(req.Context(), request.CompanyID, request.Files)
		if err != nil {
			log.Println(err)
			resp.WriteHeader(http.StatusInternalServerError)
			return
		}

		response := uploadResponse{Message: "Upload complete", Results: results}
		if err = platform.WriteJSONResponse(resp, &response); err != nil {
			log.Println(err)
		}
	}
}

/*
StartUploadAPI starts the API used to issue presigned receipt upload URLs
and to accept direct base64 uploads
*/
func StartUploadAPI(listenAddr string, presigner *URLPresigner, uploader *DirectUploader) {
	uploadAPI := http.NewServeMux()
	uploadAPI.HandleFunc(platform.UploadServiceAPIPresignResource, createPresignHandler(presigner))
	uploadAPI.HandleFunc(platform.UploadServiceAPIUploadResource, createDirectUploadHandler(uploader))
	log.Fatal(http.ListenAndServe(listenAddr, uploadAPI))
}
