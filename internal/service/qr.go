package service

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/pokerbank/internal/engine"
	"github.com/skip2/go-qrcode"
)

// QRSize is the edge length of join QR images in pixels.
const QRSize = 256

// JoinURL is the link a join QR code encodes.
func JoinURL(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/join/" + code
}

// QRHandler serves GET /join/{code}/qr.png for games that exist.
func QRHandler(eng *engine.Engine, publicURL string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(r.PathValue("code"))
		g, err := eng.GameByCode(r.Context(), code)
		if err != nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		png, err := qrcode.Encode(JoinURL(publicURL, g.Code), qrcode.Medium, QRSize)
		if err != nil {
			slog.Error("Failed to encode join QR", "code", code, "error", err)
			http.Error(w, "failed to render QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if _, err := w.Write(png); err != nil {
			slog.Debug("Failed to write join QR", "code", code, "error", err)
		}
	})
}
