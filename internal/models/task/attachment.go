package task

import (
	"encoding/json"
	"fmt"
)

// Attachment — размеченный вариант: либо ещё не загруженный бинарный блоб
// (Pending), либо уже сохранённый URL (Resolved). Смешанный список возможен
// только пока правка в полёте; граница персистентности принимает лишь URL.
type Attachment struct {
	Name string `json:"name,omitempty"`
	Data []byte `json:"-"`
	URL  string `json:"url,omitempty"`
}

func PendingAttachment(name string, data []byte) Attachment {
	return Attachment{Name: name, Data: data}
}

func ResolvedAttachment(url string) Attachment {
	return Attachment{URL: url}
}

func (a Attachment) Resolved() bool {
	return a.URL != ""
}

// В JSON разрешённое вложение — просто строка URL, как в контракте
// хранилища. Неразрешённый блоб наружу не сериализуется.
func (a Attachment) MarshalJSON() ([]byte, error) {
	if !a.Resolved() {
		return nil, fmt.Errorf("вложение %q не загружено, сериализация невозможна", a.Name)
	}
	return json.Marshal(a.URL)
}

func (a *Attachment) UnmarshalJSON(b []byte) error {
	var url string
	if err := json.Unmarshal(b, &url); err != nil {
		return fmt.Errorf("разбор вложения: %w", err)
	}
	*a = ResolvedAttachment(url)
	return nil
}
