package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Event: Bildirim gövdesi. Geriye dönük işlem ve kalıcı silme bildirimleri
// aynı şekli taşır.
type Event struct {
	TxnNo       string `json:"txn_no"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	TxnDate     string `json:"txn_date"`
	PerformedAt string `json:"performed_at"`
	ActorName   string `json:"actor_name"`
	ActorEmail  string `json:"actor_email"`
}

// Notifier commit sonrası tetiklenir; hatası işlemin sonucunu etkilemez.
type Notifier interface {
	SendBackdatedTransaction(ev Event) error
	SendHardDelete(ev Event) error
}

// LogNotifier: Varsayılan bildirim kanalı, yalnızca log'a yazar.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendBackdatedTransaction(ev Event) error {
	log.Printf("[NOTIFY] Geriye dönük işlem: %s %s TL (%s) - %s", ev.TxnNo, ev.Amount, ev.TxnDate, ev.ActorName)
	return nil
}

func (n *LogNotifier) SendHardDelete(ev Event) error {
	log.Printf("[NOTIFY] İşlem kalıcı silindi: %s %s TL (%s) - %s", ev.TxnNo, ev.Amount, ev.TxnDate, ev.ActorName)
	return nil
}

// WebhookNotifier: Bildirimleri JSON POST olarak dış servise iletir.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) SendBackdatedTransaction(ev Event) error {
	return n.post("backdated_transaction", ev)
}

func (n *WebhookNotifier) SendHardDelete(ev Event) error {
	return n.post("hard_delete", ev)
}

func (n *WebhookNotifier) post(kind string, ev Event) error {
	payload := struct {
		Kind  string `json:"kind"`
		Event Event  `json:"event"`
	}{Kind: kind, Event: ev}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bildirim gövdesi oluşturulamadı: %w", err)
	}

	resp, err := n.Client.Post(n.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bildirim gönderilemedi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("bildirim servisi %d döndü", resp.StatusCode)
	}
	return nil
}
