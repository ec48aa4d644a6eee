// Определяет политики безопасности для HTML, который отдается публичным
// страницам. Политики применяются к результату рендеринга документа и к
// любому HTML, пришедшему от пользователя, чтобы предотвратить XSS.
//
// Основные возможности:
//   - Разрешение/запрет определенных атрибутов для конкретных элементов.
//   - Ограничение допустимых значений атрибутов с помощью регулярных выражений.
//   - Белый список iframe только для известных провайдеров встраивания.
//   - Использование pre-определенных политик (StrictPolicy, UGCPolicy).
package policy

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var ArticlePolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgb\((\d+),\s*(\d+),\s*(\d+)\)|inherit)$`)
	alignStyleRegexp := regexp.MustCompile(`^text-align: (left|center|right|justify)$`)
	classRegexp := regexp.MustCompile(`^(plant-care-card|pro-tip|growth-timeline|week|embed|embed-youtube|embed-instagram|embed-twitter)( (plant-care-card|pro-tip|growth-timeline|week|embed|embed-youtube|embed-instagram|embed-twitter))*$`)
	langClassRegexp := regexp.MustCompile(`^language-[a-zA-Z0-9+-]+$`)
	anchorRegexp := regexp.MustCompile(`^[a-z0-9а-яё-]+$`)
	embedSrcRegexp := regexp.MustCompile(`^https://(www\.youtube-nocookie\.com/embed/|www\.instagram\.com/(p|reel)/|platform\.twitter\.com/embed/)`)

	ArticlePolicy.AllowElements("figure", "figcaption", "aside", "dl", "dt", "dd", "mark", "iframe")

	ArticlePolicy.AllowAttrs("id").Matching(anchorRegexp).OnElements("h1", "h2", "h3")
	ArticlePolicy.AllowAttrs("style").Matching(alignStyleRegexp).OnElements("p", "h1", "h2", "h3")
	ArticlePolicy.AllowAttrs("data-color").Matching(colorRegexp).OnElements("mark")
	ArticlePolicy.AllowAttrs("class").Matching(classRegexp).OnElements("aside", "div", "ol", "span")
	ArticlePolicy.AllowAttrs("class").Matching(langClassRegexp).OnElements("code")
	ArticlePolicy.AllowAttrs("loading").Matching(regexp.MustCompile(`^(lazy|eager)$`)).OnElements("img")
	ArticlePolicy.AllowAttrs("colspan", "rowspan").Matching(regexp.MustCompile(`^\d+$`)).OnElements("th", "td")

	ArticlePolicy.AllowAttrs("src").Matching(embedSrcRegexp).OnElements("iframe")
	ArticlePolicy.AllowAttrs("frameborder").Matching(regexp.MustCompile(`^0$`)).OnElements("iframe")
	ArticlePolicy.AllowAttrs("allowfullscreen").OnElements("iframe")

	ArticlePolicy.RequireNoFollowOnLinks(false)
	ArticlePolicy.AllowAttrs("rel").Matching(regexp.MustCompile(`^noopener noreferrer$`)).OnElements("a")
	ArticlePolicy.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
}
