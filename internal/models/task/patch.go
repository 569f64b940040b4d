package task

// Patch — частичное обновление задачи: nil-поле означает «не трогать».
// Слияние пополевое, опущенные поля сохраняют прежнее значение из кэша.
type Patch struct {
	Name        *string
	Description *string
	DueDate     *Date
	Status      *Status
	Category    *Category
	Attachments []Attachment
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.DueDate == nil &&
		p.Status == nil && p.Category == nil && p.Attachments == nil
}

// Apply накладывает заполненные поля на задачу.
func (p Patch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = NormalizeCategory(*p.Category)
	}
	if p.Attachments != nil {
		t.Attachments = append([]Attachment(nil), p.Attachments...)
	}
}

// Fields — представление патча для удалённого хранилища: только затронутые
// поля, имена — проводной контракт. Вложения и историю дописывает менеджер,
// когда они затронуты.
func (p Patch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.DueDate != nil {
		fields["due_date"] = p.DueDate.String()
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.Category != nil {
		fields["category"] = string(NormalizeCategory(*p.Category))
	}
	return fields
}

// Вспомогательные конструкторы в духе функциональных опций.

func WithName(name string) func(*Patch) {
	return func(p *Patch) { p.Name = &name }
}

func WithDescription(description string) func(*Patch) {
	return func(p *Patch) { p.Description = &description }
}

func WithStatus(status Status) func(*Patch) {
	return func(p *Patch) { p.Status = &status }
}

func WithDueDate(due Date) func(*Patch) {
	return func(p *Patch) { p.DueDate = &due }
}

func WithCategory(category Category) func(*Patch) {
	return func(p *Patch) { p.Category = &category }
}

func NewPatch(opts ...func(*Patch)) Patch {
	var p Patch
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}
