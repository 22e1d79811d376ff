package report

import (
	"errors"
	"log"
	"net/http"

	platform "github.com/chequebase/chequebase-ai/platform"
)

// StartReportAccessAPI starts the API used to serve expense reports synchronously
func StartReportAccessAPI(listenAddr string, generator *Generator) {
	reportMux := http.NewServeMux()
	reportMux.HandleFunc(platform.ReportServiceAPIFetchResource,
		func(resp http.ResponseWriter, req *http.Request) {
			// Retrieve and validate the report range
			request := RequestFromQuery(req.URL.Query())
			if err := ValidateRequest(request); err != nil {
				platform.WriteErrorResponse(resp, http.StatusBadRequest, err.Error())
				return
			}

			// Build the report inline
			doc, err := generator.Generate(req.Context(), request)
			if err != nil {
				if errors.Is(err, ErrNoRecords) {
					platform.WriteErrorResponse(resp, http.StatusNotFound, err.Error())
					return
				}
				log.Println(err)
				resp.WriteHeader(http.StatusInternalServerError)
				return
			}

			if err = platform.WriteJSONResponse(resp, &doc); err != nil {
				log.Println(err)
				resp.WriteHeader(http.StatusInternalServerError)
			}
		})

	log.Fatal(http.ListenAndServe(listenAddr, reportMux))
}
