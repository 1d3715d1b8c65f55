package app

import (
	"encoding/json"
	"net/http"
)

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

func apiResponse(w http.ResponseWriter, status, code int, msg string, data any) {
	resp, err := json.Marshal(&response{Code: code, Msg: msg, Data: data})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("error marshalling response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(resp)
}

func ok(w http.ResponseWriter, data any) {
	apiResponse(w, http.StatusOK, 0, "ok", data)
}

func fail(w http.ResponseWriter, status int, msg string, err error) {
	apiResponse(w, status, -1, msg, err.Error())
}
