package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	bytes2 "github.com/dcrodman/bfcrypt/internal/core/bytes"
	"github.com/dcrodman/bfcrypt/internal/data"
	"github.com/dcrodman/bfcrypt/internal/encryption"
)

// Request bodies are capped well above anything the form would send.
const maxBodySize = 1 << 20

type encryptRequest struct {
	Key       string `json:"key"`
	Plaintext string `json:"plaintext"`
}

type encryptResponse struct {
	Ciphertext string `json:"ciphertext"`
}

type decryptRequest struct {
	Key        string `json:"key"`
	Ciphertext string `json:"ciphertext"`
}

type decryptResponse struct {
	Plaintext string `json:"plaintext"`
}

type ciphertextRecord struct {
	Name       string    `json:"name"`
	Ciphertext string    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("bfcrypt API server"))
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req encryptRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Key == "" || req.Plaintext == "" {
		s.writeError(w, http.StatusBadRequest, "key and plaintext are required")
		return
	}

	cipher, err := s.Ciphers.Cipher(bytes2.TextToBytes(req.Key))
	if err != nil {
		s.writeCipherError(w, err)
		return
	}

	ciphertext := cipher.Encrypt(bytes2.TextToBytes(req.Plaintext))
	s.writeJSON(w, http.StatusOK, encryptResponse{Ciphertext: bytes2.BytesToHex(ciphertext)})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req decryptRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	hexCiphertext := strings.TrimSpace(req.Ciphertext)
	if req.Key == "" || hexCiphertext == "" {
		s.writeError(w, http.StatusBadRequest, "key and ciphertext are required")
		return
	}

	ciphertext, err := bytes2.HexToBytes(hexCiphertext)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "ciphertext must be valid hex: "+err.Error())
		return
	}

	cipher, err := s.Ciphers.Cipher(bytes2.TextToBytes(req.Key))
	if err != nil {
		s.writeCipherError(w, err)
		return
	}

	plaintext, err := cipher.Decrypt(ciphertext)
	if err != nil {
		s.writeCipherError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, decryptResponse{Plaintext: bytes2.BytesToText(plaintext)})
}

func (s *Server) handleSaveCiphertext(w http.ResponseWriter, r *http.Request) {
	var req ciphertextRecord
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || strings.TrimSpace(req.Ciphertext) == "" {
		s.writeError(w, http.StatusBadRequest, "name and ciphertext are required")
		return
	}

	ciphertext, err := bytes2.HexToBytes(req.Ciphertext)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "ciphertext must be valid hex: "+err.Error())
		return
	}
	if len(ciphertext)%encryption.BlockSize != 0 {
		s.writeCipherError(w, encryption.CiphertextSizeError(len(ciphertext)))
		return
	}

	record := &data.Ciphertext{Name: req.Name, Data: ciphertext}
	if err := data.CreateCiphertext(s.DB, record); err != nil {
		if errors.Is(err, data.ErrNameTaken) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.Logger.WithError(err).Error("error saving ciphertext")
		s.writeError(w, http.StatusInternalServerError, "error saving ciphertext")
		return
	}
	s.writeJSON(w, http.StatusCreated, toRecord(record))
}

func (s *Server) handleListCiphertexts(w http.ResponseWriter, r *http.Request) {
	ciphertexts, err := data.ListCiphertexts(s.DB)
	if err != nil {
		s.Logger.WithError(err).Error("error listing ciphertexts")
		s.writeError(w, http.StatusInternalServerError, "error listing ciphertexts")
		return
	}

	records := make([]ciphertextRecord, 0, len(ciphertexts))
	for i := range ciphertexts {
		records = append(records, toRecord(&ciphertexts[i]))
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetCiphertext(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ciphertext, err := data.FindCiphertext(s.DB, name)
	if err != nil {
		s.Logger.WithError(err).Error("error finding ciphertext")
		s.writeError(w, http.StatusInternalServerError, "error finding ciphertext")
		return
	}
	if ciphertext == nil {
		s.writeError(w, http.StatusNotFound, "no ciphertext named "+name)
		return
	}
	s.writeJSON(w, http.StatusOK, toRecord(ciphertext))
}

func (s *Server) handleDeleteCiphertext(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	deleted, err := data.DeleteCiphertext(s.DB, name)
	if err != nil {
		s.Logger.WithError(err).Error("error deleting ciphertext")
		s.writeError(w, http.StatusInternalServerError, "error deleting ciphertext")
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, "no ciphertext named "+name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toRecord(c *data.Ciphertext) ciphertextRecord {
	return ciphertextRecord{
		Name:       c.Name,
		Ciphertext: bytes2.BytesToHex(c.Data),
		CreatedAt:  c.CreatedAt,
	}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeCipherError maps errors from the encryption package onto responses.
// Bad keys and malformed ciphertext are the caller's fault; anything else
// means the build is broken.
func (s *Server) writeCipherError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, encryption.ErrInvalidKeyLength):
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("key must be between %d and %d bytes", encryption.MinKeySize, encryption.MaxKeySize))
	case errors.Is(err, encryption.ErrInvalidCiphertextLength):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.Logger.WithError(err).Error("cipher failure")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.WithError(err).Warn("error writing response")
	}
}
