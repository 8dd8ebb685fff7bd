package model

// OptionBundle is the typed set of selectable values a form needs to render.
// A bundle triggers a form only when Valid reports true; empty bundles are
// treated as "no form to show".
type OptionBundle interface {
	Valid() bool
}

// Website is a crawl target the user can select.
type Website struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CrawlOptions feeds the crawl configuration form.
type CrawlOptions struct {
	Websites []Website `json:"websites"`
}

func (o CrawlOptions) Valid() bool {
	return len(o.Websites) > 0
}

// Campaign is an outreach campaign the user can attach to.
type Campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Template is an outreach message template.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Sender is one flattened sender entry. Upstream tools group senders under a
// company; GroupID and Company carry the parent group down because the form
// renders individual senders, not groups.
type Sender struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	GroupID    string `json:"group_id"`
	Company    string `json:"company"`
}

// SenderGroup is the nested wire shape senders arrive in.
type SenderGroup struct {
	ID      string   `json:"id"`
	Company string   `json:"company"`
	Senders []Sender `json:"senders"`
}

// OutreachOptions feeds the outreach campaign form.
type OutreachOptions struct {
	Campaigns []Campaign `json:"campaigns"`
	Templates []Template `json:"templates"`
	Senders   []Sender   `json:"senders"`
}

func (o OutreachOptions) Valid() bool {
	return len(o.Campaigns) > 0 || len(o.Templates) > 0 || len(o.Senders) > 0
}

// CustomField describes one arbitrary input field requested by a tool.
type CustomField struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Default string `json:"default"`
}

// CustomFieldOptions feeds the free-form field list form. Prefilled holds the
// key→value mapping folded out of the tool's parameter pairs, merged over the
// field defaults.
type CustomFieldOptions struct {
	Fields    []CustomField     `json:"fields"`
	Prefilled map[string]string `json:"prefilled"`
}

func (o CustomFieldOptions) Valid() bool {
	return len(o.Fields) > 0 || len(o.Prefilled) > 0
}

// KeywordSource is one selectable source of keywords.
type KeywordSource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// KeywordOptions feeds the keyword source form.
type KeywordOptions struct {
	Sources []KeywordSource `json:"sources"`
}

func (o KeywordOptions) Valid() bool {
	return len(o.Sources) > 0
}

// MarkdownOptions feeds the markdown review form.
type MarkdownOptions struct {
	Content string `json:"content"`
}

func (o MarkdownOptions) Valid() bool {
	return o.Content != ""
}
