package database

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-svc/models"
)

// FetchProducts loads the full catalog with stocks and edit history
// assembled into the normalized product shape. Flat single-quantity rows
// never leave this package.
func FetchProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, type, barcode, price, solde, supplier, description, image, created_at, updated_at FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	index := make(map[int]int)
	for rows.Next() {
		var p models.Product
		var solde sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Barcode, &p.Price, &solde,
			&p.Supplier, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if solde.Valid {
			p.Solde = &solde.Float64
		}
		p.Stocks = []models.StockLocation{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	if err := attachStocks(ctx, db, products, index); err != nil {
		return nil, err
	}
	if err := attachEdits(ctx, db, products, index); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchProduct loads one product by id. Returns sql.ErrNoRows when absent.
func FetchProduct(ctx context.Context, db *sql.DB, id string) (models.Product, error) {
	var p models.Product
	var solde sql.NullFloat64
	err := db.QueryRowContext(ctx,
		"SELECT id, name, type, barcode, price, solde, supplier, description, image, created_at, updated_at FROM products WHERE id = $1",
		id,
	).Scan(&p.ID, &p.Name, &p.Type, &p.Barcode, &p.Price, &solde,
		&p.Supplier, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}
	if solde.Valid {
		p.Solde = &solde.Float64
	}

	p.Stocks, err = FetchStocks(ctx, db, p.ID)
	if err != nil {
		return models.Product{}, err
	}
	p.EditedBy, err = fetchEdits(ctx, db, p.ID)
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// FetchStocks loads one product's stock locations in insertion order.
func FetchStocks(ctx context.Context, db *sql.DB, productID int) ([]models.StockLocation, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, city, latitude, longitude, quantity FROM stocks WHERE product_id = $1 ORDER BY id",
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stocks: %w", err)
	}
	defer rows.Close()

	stocks := []models.StockLocation{}
	for rows.Next() {
		var s models.StockLocation
		if err := rows.Scan(&s.ID, &s.Name, &s.Localisation.City,
			&s.Localisation.Latitude, &s.Localisation.Longitude, &s.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

func fetchEdits(ctx context.Context, db *sql.DB, productID int) ([]models.EditEntry, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT warehouseman_id, edited_at FROM product_edits WHERE product_id = $1 ORDER BY id",
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch edit history: %w", err)
	}
	defer rows.Close()

	edits := []models.EditEntry{}
	for rows.Next() {
		var e models.EditEntry
		if err := rows.Scan(&e.WarehousemanID, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan edit entry: %w", err)
		}
		edits = append(edits, e)
	}
	return edits, rows.Err()
}

func attachStocks(ctx context.Context, db *sql.DB, products []models.Product, index map[int]int) error {
	rows, err := db.QueryContext(ctx,
		"SELECT id, product_id, name, city, latitude, longitude, quantity FROM stocks ORDER BY product_id, id")
	if err != nil {
		return fmt.Errorf("failed to fetch stocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.StockLocation
		var productID int
		if err := rows.Scan(&s.ID, &productID, &s.Name, &s.Localisation.City,
			&s.Localisation.Latitude, &s.Localisation.Longitude, &s.Quantity); err != nil {
			return fmt.Errorf("failed to scan stock: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Stocks = append(products[i].Stocks, s)
		}
	}
	return rows.Err()
}

func attachEdits(ctx context.Context, db *sql.DB, products []models.Product, index map[int]int) error {
	rows, err := db.QueryContext(ctx,
		"SELECT product_id, warehouseman_id, edited_at FROM product_edits ORDER BY product_id, id")
	if err != nil {
		return fmt.Errorf("failed to fetch edit history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.EditEntry
		var productID int
		if err := rows.Scan(&productID, &e.WarehousemanID, &e.At); err != nil {
			return fmt.Errorf("failed to scan edit entry: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].EditedBy = append(products[i].EditedBy, e)
		}
	}
	return rows.Err()
}
