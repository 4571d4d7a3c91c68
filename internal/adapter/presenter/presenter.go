package presenter

import (
	"encoding/base64"
	"strings"

	"github.com/ethanwaldo/checkers/pkg/checkersdto"
)

// Presenter delivers formatted messages and board images without coupling to
// the transport layer.
type Presenter struct {
	sendMessage func(message string) error
	sendImage   func(imageBase64 string) error
}

func NewPresenter(sendMessage func(message string) error, sendImage func(imageBase64 string) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

// Board sends the text first, then the board image when the state carries one.
func (p *Presenter) Board(message string, state *checkersdto.SessionState) error {
	if p == nil {
		return nil
	}

	if text := strings.TrimSpace(message); text != "" && p.sendMessage != nil {
		if err := p.sendMessage(message); err != nil {
			return err
		}
	}

	if state != nil && len(state.BoardImage) > 0 && p.sendImage != nil {
		encoded := base64.StdEncoding.EncodeToString(state.BoardImage)
		if err := p.sendImage(encoded); err != nil {
			return err
		}
	}

	return nil
}
