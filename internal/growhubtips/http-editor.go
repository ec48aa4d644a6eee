// API редактора документов: палитра блоков, автосохранение и предпросмотр.
//
// Основные возможности:
//   - Палитра слэш-команд с нечетким поиском по каталогу блоков.
//   - Наблюдение изменений документа с отложенной записью черновика.
//   - Восстановление черновика из основного и резервного хранилища.
//   - Предпросмотр документа с оглавлением.
package growhubtips

import (
	"net/http"

	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/blocks"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/render"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (s *Services) AddEditorServices(g *echo.Group) {
	g.GET("editor/blocks/", s.getEditorBlocks)
	g.GET("editor/blocks/:blockType/", s.getEditorBlockNode)

	g.POST("editor/preview/", s.previewDocument)

	docGroup := g.Group("editor/:docId/")
	docGroup.POST("observe/", s.observeDocument)
	docGroup.POST("flush/", s.flushDocument)
	docGroup.GET("status/", s.getDocumentStatus)
	docGroup.GET("draft/", s.getDocumentDraft)
	docGroup.DELETE("draft/", s.deleteDocumentDraft)
}

// getEditorBlocks возвращает каталог блоков, отранжированный по запросу
// палитры. Пустой запрос дает каталог в исходном порядке.
func (s *Services) getEditorBlocks(c echo.Context) error {
	limit := 0
	if err := echo.QueryParamsBinder(c).
		Int("limit", &limit).
		BindError(); err != nil {
		return EError(c, err)
	}

	query := c.QueryParam("q")
	if query == "" {
		result := blocks.All()
		if limit > 0 && limit < len(result) {
			result = result[:limit]
		}
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusOK, blocks.Suggest(query, limit))
}

// getEditorBlockNode возвращает узел-заготовку для вставки блока.
func (s *Services) getEditorBlockNode(c echo.Context) error {
	block, ok := blocks.Find(c.Param("blockType"))
	if !ok {
		return EErrorDefined(c, apierrors.ErrUnknownBlockType)
	}
	return c.JSON(http.StatusOK, block.NewNode())
}

type PreviewResponse struct {
	HTML            string            `json:"html"`
	TableOfContents []render.TOCEntry `json:"table_of_contents"`
}

// previewDocument рендерит документ в HTML без сохранения.
func (s *Services) previewDocument(c echo.Context) error {
	var doc doctree.Document
	if err := c.Bind(&doc); err != nil {
		return EErrorDefined(c, apierrors.ErrDocumentInvalid)
	}

	html := s.newRenderer().HTML(doc)
	toc, err := render.TableOfContents(html)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, PreviewResponse{
		HTML:            html,
		TableOfContents: toc,
	})
}

type ObserveResponse struct {
	Status string `json:"status"`
}

// observeDocument принимает очередное состояние документа редактора.
// Запись произойдет после интервала тишины, неизмененный документ
// записи не вызывает.
func (s *Services) observeDocument(c echo.Context) error {
	docId := c.Param("docId")

	var doc doctree.Document
	if err := c.Bind(&doc); err != nil {
		return EErrorDefined(c, apierrors.ErrDocumentInvalid)
	}

	if err := s.autosaver.Observe(docId, doc); err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, ObserveResponse{Status: string(s.autosaver.Status(docId))})
}

// flushDocument немедленно записывает отложенные изменения документа.
func (s *Services) flushDocument(c echo.Context) error {
	docId := c.Param("docId")

	if err := s.autosaver.Flush(c.Request().Context(), docId); err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, ObserveResponse{Status: string(s.autosaver.Status(docId))})
}

// getDocumentStatus возвращает состояние автосохранения документа.
func (s *Services) getDocumentStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, ObserveResponse{Status: string(s.autosaver.Status(c.Param("docId")))})
}

type DraftResponse struct {
	DocId     string           `json:"doc_id"`
	Content   doctree.Document `json:"content"`
	Recovered bool             `json:"recovered"`
}

// getDocumentDraft возвращает черновик документа. Сначала проверяется
// резерв автосохранения: работа, пережившая сбой, важнее записи в базе.
func (s *Services) getDocumentDraft(c echo.Context) error {
	docId := c.Param("docId")

	if payload, ok, err := s.autosaver.Recover(docId); err == nil && ok {
		doc, err := doctree.Parse(payload)
		if err != nil {
			return EError(c, err)
		}
		return c.JSON(http.StatusOK, DraftResponse{DocId: docId, Content: doc, Recovered: true})
	}

	draft, err := dao.GetDraft(s.db, docId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrDraftNotFound)
		}
		return EError(c, err)
	}

	doc, err := doctree.Parse(draft.Payload)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, DraftResponse{DocId: docId, Content: doc})
}

// deleteDocumentDraft удаляет черновик документа.
func (s *Services) deleteDocumentDraft(c echo.Context) error {
	docId := c.Param("docId")

	if err := dao.DeleteDraft(s.db, docId); err != nil && err != gorm.ErrRecordNotFound {
		return EError(c, err)
	}
	if err := s.fallback.Delete(docId); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusOK)
}
