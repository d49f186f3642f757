package render

import (
	"html/template"
	"io"

	types "vcc-feedback/internal/types/feedback"
)

// FormView - состояние формы: введенные значения и ошибки по полям
type FormView struct {
	Values types.RawSubmission
	Errors types.FieldErrors
}

// Pages - адаптер, который пишет проекции в HTML.
// Пользовательский текст приходит уже экранированным через Escape.
type Pages struct {
	index   *template.Template
	form    *template.Template
	detail  *template.Template
	errPage *template.Template
}

func NewPages() *Pages {
	layout := template.Must(template.New("layout").Funcs(template.FuncMap{
		"ratingOptions": func() []string { return []string{"1", "2", "3", "4", "5"} },
	}).Parse(layoutHTML))

	page := func(content string) *template.Template {
		return template.Must(template.Must(layout.Clone()).Parse(content))
	}

	return &Pages{
		index:   page(indexHTML),
		form:    page(formHTML),
		detail:  page(detailHTML),
		errPage: page(errorHTML),
	}
}

func (p *Pages) Index(w io.Writer, items []ListItem) error {
	return p.index.Execute(w, items)
}

func (p *Pages) Form(w io.Writer, view FormView) error {
	if view.Errors == nil {
		view.Errors = types.FieldErrors{}
	}
	return p.form.Execute(w, view)
}

// Detail - nil рисует заглушку со ссылкой на форму
func (p *Pages) Detail(w io.Writer, d *Detail) error {
	return p.detail.Execute(w, d)
}

func (p *Pages) Error(w io.Writer, message string) error {
	return p.errPage.Execute(w, message)
}

const layoutHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{block "title" .}}感想{{end}}</title>
</head>
<body>
  <header>
    <nav><a href="/">感想一覧</a> | <a href="/feedback">感想を投稿する</a></nav>
  </header>
  <main>{{block "content" .}}{{end}}</main>
</body>
</html>
`

const indexHTML = `{{define "title"}}感想一覧{{end}}
{{define "content"}}
<section id="feedback-list">
{{range .}}
  <article class="card">
    <div class="meta">
      <span>{{.Author}}</span>
      <span class="rating" aria-label="評価">{{.Stars}}</span>
      <span>{{.Date}}</span>
    </div>
    <p>{{.Body}}</p>
  </article>
{{else}}
  <p class="muted">まだ公開された感想はありません。</p>
{{end}}
</section>
{{end}}
`

const formHTML = `{{define "title"}}感想を投稿する{{end}}
{{define "content"}}
<form id="feedback-form" method="post" action="/feedback" novalidate>
  <label>ニックネーム（任意）<input type="text" name="nickname" value="{{.Values.Nickname}}"></label>
  <p class="error" data-for="nickname">{{index .Errors "nickname"}}</p>

  <label>受講期（任意）<input type="text" name="cohort" value="{{.Values.Cohort}}"></label>
  <p class="error" data-for="cohort">{{index .Errors "cohort"}}</p>

  <fieldset aria-label="評価">
    <legend>評価</legend>
    {{$rating := .Values.Rating}}
    {{range $r := ratingOptions}}
    <label><input type="radio" name="rating" value="{{$r}}"{{if eq $r $rating}} checked{{end}}>{{$r}}</label>
    {{end}}
  </fieldset>
  <p class="error" data-for="rating">{{index .Errors "rating"}}</p>

  <label>感想<textarea name="body" rows="6">{{.Values.Body}}</textarea></label>
  <p class="error" data-for="body">{{index .Errors "body"}}</p>

  <fieldset aria-label="公開設定">
    <legend>公開設定</legend>
    <label><input type="radio" name="visibility" value="public"{{if eq .Values.Visibility "public"}} checked{{end}}>公開</label>
    <label><input type="radio" name="visibility" value="private"{{if eq .Values.Visibility "private"}} checked{{end}}>非公開</label>
  </fieldset>
  <p class="error" data-for="visibility">{{index .Errors "visibility"}}</p>

  <label><input type="checkbox" name="agree" value="1"{{if .Values.Agree}} checked{{end}}>利用規約に同意する</label>
  <p class="error" data-for="agree">{{index .Errors "agree"}}</p>

  <button type="submit">送信</button>
</form>
{{end}}
`

const detailHTML = `{{define "title"}}投稿内容{{end}}
{{define "content"}}
<section id="feedback-detail">
{{if .}}
  <article class="card">
    <div class="meta">
      <span>{{.Author}}</span>
      <span class="rating" aria-label="評価">{{.Stars}}</span>
      <span>{{.Date}}</span>
      <span>({{.Visibility}})</span>
    </div>
    <p>{{.Body}}</p>
  </article>
{{else}}
  <div class="card">
    <p class="muted">表示できる投稿がありません。<a href="/feedback">感想を投稿する</a></p>
  </div>
{{end}}
</section>
{{end}}
`

const errorHTML = `{{define "title"}}エラー{{end}}
{{define "content"}}
<div class="card">
  <p class="muted">{{.}}</p>
  <p><a href="/feedback">感想を投稿する</a></p>
</div>
{{end}}
`
