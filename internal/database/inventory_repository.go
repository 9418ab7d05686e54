package database

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// InventoryRepo handles stocked materials and tools
type InventoryRepo struct {
	db DBTX
}

const itemColumns = `id, organization_id, name, supplier, quantity, min_quantity, unit`

func scanItem(row interface{ Scan(...any) error }) (*models.InventoryItem, error) {
	it := &models.InventoryItem{}
	if err := row.Scan(&it.ID, &it.OrganizationID, &it.Name, &it.Supplier, &it.Quantity, &it.MinQuantity, &it.Unit); err != nil {
		return nil, err
	}
	return it, nil
}

// Create inserts an item
func (r *InventoryRepo) Create(ctx context.Context, it *models.InventoryItem) (*models.InventoryItem, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (organization_id, name, supplier, quantity, min_quantity, unit)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.OrganizationID, it.Name, it.Supplier, it.Quantity, it.MinQuantity, it.Unit)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, it.OrganizationID, int(id))
}

// GetByID retrieves an item of orgID
func (r *InventoryRepo) GetByID(ctx context.Context, orgID, id int) (*models.InventoryItem, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = ? AND organization_id = ?`, id, orgID))
	if err != nil {
		return nil, notFound(err, "item", id)
	}
	return it, nil
}

// List returns every item of an organization ordered by name
func (r *InventoryRepo) List(ctx context.Context, orgID int) ([]*models.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE organization_id = ? ORDER BY name COLLATE NOCASE, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update rewrites an item's descriptive fields and thresholds
func (r *InventoryRepo) Update(ctx context.Context, it *models.InventoryItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items SET name = ?, supplier = ?, min_quantity = ?, unit = ?
		WHERE id = ? AND organization_id = ?`,
		it.Name, it.Supplier, it.MinQuantity, it.Unit, it.ID, it.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", it.ID, err)
	}
	return requireAffected(res, "item", it.ID)
}

// SetQuantity stores a new stock level
func (r *InventoryRepo) SetQuantity(ctx context.Context, orgID, id, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET quantity = ? WHERE id = ? AND organization_id = ?`, quantity, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to set quantity of item %d: %w", id, err)
	}
	return requireAffected(res, "item", id)
}

// Delete removes an item
func (r *InventoryRepo) Delete(ctx context.Context, orgID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return requireAffected(res, "item", id)
}

// CountLow returns how many items are at or below their reorder threshold
func (r *InventoryRepo) CountLow(ctx context.Context, orgID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE organization_id = ? AND quantity <= min_quantity`, orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count low stock: %w", err)
	}
	return n, nil
}
