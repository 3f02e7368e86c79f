package searcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feed-export-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres loads product aggregates from the catalog database. Every page is
// returned fully hydrated: prices, categories, properties, children and
// stream references are pre-loaded so the pipeline never touches the
// database.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres connects to the catalog database.
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

type productRow struct {
	ID                 string         `db:"id"`
	ParentID           string         `db:"parent_id"`
	Name               string         `db:"name"`
	Description        string         `db:"description"`
	OrderNumber        string         `db:"order_number"`
	EAN                string         `db:"ean"`
	ManufacturerNumber string         `db:"manufacturer_number"`
	ManufacturerName   string         `db:"manufacturer_name"`
	Active             bool           `db:"active"`
	Available          bool           `db:"available"`
	Stock              int            `db:"stock"`
	ShippingFree       bool           `db:"shipping_free"`
	Weight             float64        `db:"weight"`
	ReleaseDate        time.Time      `db:"release_date"`
	Rating             float64        `db:"rating"`
	SalesCount         int            `db:"sales_count"`
	MainVariantID      string         `db:"main_variant_id"`
	Visible            bool           `db:"visible"`
	URL                string         `db:"url"`
	Keywords           pq.StringArray `db:"keywords"`
	CustomFields       []byte         `db:"custom_fields"`
}

const productColumns = `
	id, COALESCE(parent_id, '') AS parent_id, name, COALESCE(description, '') AS description,
	order_number, COALESCE(ean, '') AS ean,
	COALESCE(manufacturer_number, '') AS manufacturer_number,
	COALESCE(manufacturer_name, '') AS manufacturer_name,
	active, available, stock, shipping_free, COALESCE(weight, 0) AS weight,
	release_date, COALESCE(rating, 0) AS rating, sales_count,
	COALESCE(main_variant_id, '') AS main_variant_id, visible, COALESCE(url, '') AS url,
	COALESCE(keywords, '{}') AS keywords, COALESCE(custom_fields, '{}') AS custom_fields`

// FetchProducts returns one hydrated page of parent products ordered by id.
func (p *Postgres) FetchProducts(ctx context.Context, limit, offset int, productID string) (*ProductPage, error) {
	var total int
	var rows []productRow

	if productID != "" {
		if err := p.db.GetContext(ctx, &total,
			"SELECT COUNT(*) FROM products WHERE parent_id IS NULL AND id = $1", productID); err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		err := p.db.SelectContext(ctx, &rows,
			"SELECT "+productColumns+" FROM products WHERE parent_id IS NULL AND id = $1", productID)
		if err != nil {
			return nil, fmt.Errorf("failed to select product: %w", err)
		}
	} else {
		if err := p.db.GetContext(ctx, &total,
			"SELECT COUNT(*) FROM products WHERE parent_id IS NULL"); err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		err := p.db.SelectContext(ctx, &rows,
			"SELECT "+productColumns+" FROM products WHERE parent_id IS NULL ORDER BY id LIMIT $1 OFFSET $2",
			limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to select products: %w", err)
		}
	}

	page := &ProductPage{Total: total, Categories: make(map[string]models.Category)}
	if len(rows) == 0 {
		return page, nil
	}

	products := make([]*models.Product, 0, len(rows))
	byID := make(map[string]*models.Product, len(rows))
	ids := make([]string, 0, len(rows))
	for i := range rows {
		product, err := rowToProduct(&rows[i])
		if err != nil {
			return nil, err
		}
		products = append(products, product)
		byID[product.ID] = product
		ids = append(ids, product.ID)
	}
	page.Products = products

	childIDs, err := p.hydrateChildren(ctx, byID, ids)
	if err != nil {
		return nil, err
	}
	allIDs := append(append([]string{}, ids...), childIDs...)

	if err := p.hydratePrices(ctx, byID, allIDs); err != nil {
		return nil, err
	}
	if err := p.hydrateProperties(ctx, byID, allIDs); err != nil {
		return nil, err
	}
	if err := p.hydrateImages(ctx, byID, allIDs); err != nil {
		return nil, err
	}
	if err := p.hydrateStreams(ctx, byID, ids); err != nil {
		return nil, err
	}
	if err := p.hydrateCategories(ctx, page, byID, allIDs); err != nil {
		return nil, err
	}

	return page, nil
}

func rowToProduct(row *productRow) (*models.Product, error) {
	product := &models.Product{
		ID:                 row.ID,
		ParentID:           row.ParentID,
		Name:               row.Name,
		Description:        row.Description,
		OrderNumber:        row.OrderNumber,
		EAN:                row.EAN,
		ManufacturerNumber: row.ManufacturerNumber,
		ManufacturerName:   row.ManufacturerName,
		Active:             row.Active,
		Available:          row.Available,
		Stock:              row.Stock,
		ShippingFree:       row.ShippingFree,
		Weight:             row.Weight,
		ReleaseDate:        row.ReleaseDate,
		Rating:             row.Rating,
		SalesCount:         row.SalesCount,
		MainVariantID:      row.MainVariantID,
		VisibleInChannel:   row.Visible,
		URL:                row.URL,
		Keywords:           row.Keywords,
	}
	if len(row.CustomFields) > 0 {
		if err := json.Unmarshal(row.CustomFields, &product.CustomFields); err != nil {
			return nil, fmt.Errorf("failed to decode custom fields for product %s: %w", row.ID, err)
		}
	}
	return product, nil
}

// hydrateChildren loads variant children and attaches them to their parents.
// Returns the child ids so relation hydration can cover them too.
func (p *Postgres) hydrateChildren(ctx context.Context, byID map[string]*models.Product, parentIDs []string) ([]string, error) {
	query, args, err := sqlx.In("SELECT "+productColumns+" FROM products WHERE parent_id IN (?) ORDER BY id", parentIDs)
	if err != nil {
		return nil, err
	}
	query = p.db.Rebind(query)

	var rows []productRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select variants: %w", err)
	}

	var childIDs []string
	for i := range rows {
		child, err := rowToProduct(&rows[i])
		if err != nil {
			return nil, err
		}
		parent, ok := byID[child.ParentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, child)
		byID[child.ID] = child
		childIDs = append(childIDs, child.ID)
	}
	return childIDs, nil
}

func (p *Postgres) hydratePrices(ctx context.Context, byID map[string]*models.Product, ids []string) error {
	type priceRow struct {
		ProductID string `db:"product_id"`
		models.Price
	}

	query, args, err := sqlx.In(`
		SELECT product_id, currency_id, gross, net,
		       COALESCE(list_gross, 0) AS list_gross, COALESCE(list_net, 0) AS list_net,
		       list_gross IS NOT NULL AS has_list_price
		FROM product_prices WHERE product_id IN (?) ORDER BY product_id, currency_id`, ids)
	if err != nil {
		return err
	}
	query = p.db.Rebind(query)

	var rows []priceRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to select prices: %w", err)
	}
	for _, row := range rows {
		if product, ok := byID[row.ProductID]; ok {
			product.Prices = append(product.Prices, row.Price)
		}
	}
	return nil
}

func (p *Postgres) hydrateProperties(ctx context.Context, byID map[string]*models.Product, ids []string) error {
	type optionRow struct {
		ProductID string `db:"product_id"`
		models.PropertyGroupOption
	}

	query, args, err := sqlx.In(`
		SELECT pp.product_id, pg.id AS group_id, pg.name AS group_name, po.value, pg.filterable
		FROM product_properties pp
		JOIN property_options po ON po.id = pp.option_id
		JOIN property_groups pg ON pg.id = po.group_id
		WHERE pp.product_id IN (?) ORDER BY pg.name, po.value`, ids)
	if err != nil {
		return err
	}
	query = p.db.Rebind(query)

	var rows []optionRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to select properties: %w", err)
	}
	for _, row := range rows {
		if product, ok := byID[row.ProductID]; ok {
			product.Properties = append(product.Properties, row.PropertyGroupOption)
		}
	}
	return nil
}

func (p *Postgres) hydrateImages(ctx context.Context, byID map[string]*models.Product, ids []string) error {
	type imageRow struct {
		ProductID string `db:"product_id"`
		URL       string `db:"url"`
	}

	query, args, err := sqlx.In(`
		SELECT product_id, url FROM product_images
		WHERE product_id IN (?) ORDER BY product_id, position`, ids)
	if err != nil {
		return err
	}
	query = p.db.Rebind(query)

	var rows []imageRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to select images: %w", err)
	}
	for _, row := range rows {
		if product, ok := byID[row.ProductID]; ok {
			product.Images = append(product.Images, models.Image{URL: row.URL})
		}
	}
	return nil
}

func (p *Postgres) hydrateStreams(ctx context.Context, byID map[string]*models.Product, ids []string) error {
	type streamRow struct {
		ProductID string `db:"product_id"`
		StreamID  string `db:"stream_id"`
	}

	query, args, err := sqlx.In(
		"SELECT product_id, stream_id FROM product_stream_members WHERE product_id IN (?)", ids)
	if err != nil {
		return err
	}
	query = p.db.Rebind(query)

	var rows []streamRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to select stream memberships: %w", err)
	}
	for _, row := range rows {
		if product, ok := byID[row.ProductID]; ok {
			product.StreamIDs = append(product.StreamIDs, row.StreamID)
		}
	}
	return nil
}

type categoryRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Active     bool           `db:"active"`
	Path       pq.StringArray `db:"path"`
	Breadcrumb pq.StringArray `db:"breadcrumb"`
}

// hydrateCategories loads assigned categories, attaches them to products and
// fills the page index with every referenced category including ancestors.
func (p *Postgres) hydrateCategories(ctx context.Context, page *ProductPage, byID map[string]*models.Product, ids []string) error {
	type assignmentRow struct {
		ProductID string `db:"product_id"`
		categoryRow
	}

	query, args, err := sqlx.In(`
		SELECT pc.product_id, c.id, c.name, c.active, c.path, c.breadcrumb
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id IN (?) ORDER BY pc.product_id, c.id`, ids)
	if err != nil {
		return err
	}
	query = p.db.Rebind(query)

	var rows []assignmentRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to select categories: %w", err)
	}

	ancestors := make(map[string]struct{})
	for _, row := range rows {
		cat := rowToCategory(&row.categoryRow)
		if product, ok := byID[row.ProductID]; ok {
			product.Categories = append(product.Categories, cat)
		}
		page.Categories[cat.ID] = cat
		for _, ancestorID := range cat.Path {
			if _, known := page.Categories[ancestorID]; !known {
				ancestors[ancestorID] = struct{}{}
			}
		}
	}

	if len(ancestors) > 0 {
		ancestorIDs := make([]string, 0, len(ancestors))
		for id := range ancestors {
			ancestorIDs = append(ancestorIDs, id)
		}
		if err := p.loadCategoryIndex(ctx, page, ancestorIDs); err != nil {
			return err
		}
	}

	return p.hydrateSeoPaths(ctx, page)
}

func (p *Postgres) loadCategoryIndex(ctx context.Context, page *ProductPage, ids []string) error {
	query, args, err := sqlx.In(
		"SELECT id, name, active, path, breadcrumb FROM categories WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	query = p.db.Rebind(query)

	var rows []categoryRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to select ancestor categories: %w", err)
	}
	for i := range rows {
		cat := rowToCategory(&rows[i])
		page.Categories[cat.ID] = cat
	}
	return nil
}

func (p *Postgres) hydrateSeoPaths(ctx context.Context, page *ProductPage) error {
	if len(page.Categories) == 0 {
		return nil
	}

	ids := make([]string, 0, len(page.Categories))
	for id := range page.Categories {
		ids = append(ids, id)
	}

	type seoRow struct {
		CategoryID string `db:"category_id"`
		models.SeoPath
	}

	query, args, err := sqlx.In(`
		SELECT category_id, COALESCE(sales_channel_id, '') AS sales_channel_id, path
		FROM category_seo_paths WHERE category_id IN (?) ORDER BY category_id, path`, ids)
	if err != nil {
		return err
	}
	query = p.db.Rebind(query)

	var rows []seoRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to select seo paths: %w", err)
	}
	for _, row := range rows {
		cat := page.Categories[row.CategoryID]
		cat.SeoPaths = append(cat.SeoPaths, row.SeoPath)
		page.Categories[row.CategoryID] = cat
	}

	// Product aggregates hold category copies; refresh them so SEO paths are
	// visible on the assigned categories too.
	for _, product := range page.Products {
		refreshSeoPaths(product, page.Categories)
		for _, child := range product.Children {
			refreshSeoPaths(child, page.Categories)
		}
	}
	return nil
}

func refreshSeoPaths(product *models.Product, index map[string]models.Category) {
	for i := range product.Categories {
		if cat, ok := index[product.Categories[i].ID]; ok {
			product.Categories[i] = cat
		}
	}
}

func rowToCategory(row *categoryRow) models.Category {
	return models.Category{
		ID:         row.ID,
		Name:       row.Name,
		Active:     row.Active,
		Path:       row.Path,
		Breadcrumb: row.Breadcrumb,
	}
}

// GetCategory loads one category by id, with its SEO paths.
func (p *Postgres) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var row categoryRow
	err := p.db.GetContext(ctx, &row,
		"SELECT id, name, active, path, breadcrumb FROM categories WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category %s: %w", id, err)
	}
	cat := rowToCategory(&row)

	var seoRows []models.SeoPath
	err = p.db.SelectContext(ctx, &seoRows, `
		SELECT COALESCE(sales_channel_id, '') AS sales_channel_id, path
		FROM category_seo_paths WHERE category_id = $1 ORDER BY path`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get seo paths for category %s: %w", id, err)
	}
	cat.SeoPaths = seoRows
	return &cat, nil
}

// GetCustomerGroups returns all customer groups ordered by id.
func (p *Postgres) GetCustomerGroups(ctx context.Context) ([]models.CustomerGroup, error) {
	var groups []models.CustomerGroup
	err := p.db.SelectContext(ctx, &groups,
		"SELECT id, display_gross FROM customer_groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to select customer groups: %w", err)
	}
	return groups, nil
}

// CountStreams counts the saved product streams that carry categories.
func (p *Postgres) CountStreams(ctx context.Context) (int, error) {
	var total int
	err := p.db.GetContext(ctx, &total, `
		SELECT COUNT(DISTINCT stream_id) FROM product_stream_categories`)
	if err != nil {
		return 0, fmt.Errorf("failed to count streams: %w", err)
	}
	return total, nil
}

// FetchStreams returns one page of product streams with the categories each
// stream resolves to.
func (p *Postgres) FetchStreams(ctx context.Context, limit, offset int) ([]models.ProductStream, error) {
	type streamCategoryRow struct {
		StreamID   string `db:"stream_id"`
		CategoryID string `db:"category_id"`
	}

	var rows []streamCategoryRow
	err := p.db.SelectContext(ctx, &rows, `
		SELECT sc.stream_id, sc.category_id
		FROM product_stream_categories sc
		JOIN (
			SELECT DISTINCT stream_id FROM product_stream_categories
			ORDER BY stream_id LIMIT $1 OFFSET $2
		) pageids ON pageids.stream_id = sc.stream_id
		ORDER BY sc.stream_id, sc.category_id`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select streams: %w", err)
	}

	var streams []models.ProductStream
	byID := make(map[string]int)
	for _, row := range rows {
		idx, ok := byID[row.StreamID]
		if !ok {
			idx = len(streams)
			byID[row.StreamID] = idx
			streams = append(streams, models.ProductStream{ID: row.StreamID})
		}
		streams[idx].CategoryIDs = append(streams[idx].CategoryIDs, row.CategoryID)
	}
	return streams, nil
}
