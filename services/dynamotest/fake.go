// Package dynamotest provides an in-memory DynamoDB client for service tests.
// It implements the subset of the DynamoDB API this server uses, including
// single-equality key conditions, SET/REMOVE update expressions, and the
// condition expressions carried by transactional writes.
package dynamotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is one stored row.
type Item = map[string]types.AttributeValue

// FakeClient is an in-memory stand-in for *dynamodb.Client.
type FakeClient struct {
	mu     sync.Mutex
	tables map[string]map[string]Item
	keys   map[string][]string

	// FailNextTransact forces the next TransactWriteItems call to fail, for
	// exercising transaction-failure paths.
	FailNextTransact bool
}

// NewFakeClient returns a fake with the server's table key schemas registered.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		tables: map[string]map[string]Item{},
		keys: map[string][]string{
			"Accounts": {"accountId"},
			"Couples":  {"coupleId"},
			"Invites":  {"inviteId"},
			"Snacks":   {"coupleId", "snackId"},
			"Spins":    {"coupleId", "spunAt"},
		},
	}
}

func (f *FakeClient) table(name string) map[string]Item {
	if f.tables[name] == nil {
		f.tables[name] = map[string]Item{}
	}
	return f.tables[name]
}

func (f *FakeClient) keyOf(tableName string, item Item) (string, error) {
	attrs, ok := f.keys[tableName]
	if !ok {
		return "", fmt.Errorf("dynamotest: unknown table %q", tableName)
	}
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		s, ok := item[attr].(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("dynamotest: missing key attribute %q for table %q", attr, tableName)
		}
		parts = append(parts, s.Value)
	}
	return strings.Join(parts, "|"), nil
}

func copyItem(item Item) Item {
	if item == nil {
		return nil
	}
	out := Item{}
	for k, v := range item {
		out[k] = v
	}
	return out
}

// Count returns the number of rows in a table.
func (f *FakeClient) Count(tableName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.table(tableName))
}

// Raw returns a stored row by its key values, or nil.
func (f *FakeClient) Raw(tableName string, keyValues ...string) Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyItem(f.table(tableName)[strings.Join(keyValues, "|")])
}

func (f *FakeClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, err := f.keyOf(*params.TableName, params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		if !evalCondition(*params.ConditionExpression, f.table(*params.TableName)[key],
			params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
			return nil, fmt.Errorf("ConditionalCheckFailedException: conditional request failed")
		}
	}
	f.table(*params.TableName)[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *FakeClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, err := f.keyOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: copyItem(f.table(*params.TableName)[key])}, nil
}

func (f *FakeClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, err := f.keyOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	item := f.table(*params.TableName)[key]
	if params.ConditionExpression != nil {
		if !evalCondition(*params.ConditionExpression, item, params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
			return nil, fmt.Errorf("ConditionalCheckFailedException: conditional request failed")
		}
	}
	item = applyUpdate(item, params.Key, *params.UpdateExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	f.table(*params.TableName)[key] = item
	return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func (f *FakeClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, err := f.keyOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		if !evalCondition(*params.ConditionExpression, f.table(*params.TableName)[key],
			params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
			return nil, fmt.Errorf("ConditionalCheckFailedException: conditional request failed")
		}
	}
	delete(f.table(*params.TableName), key)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query supports the single-equality key conditions this server issues, for
// both base tables and GSIs. Sort order follows ScanIndexForward over the
// table's sort key.
func (f *FakeClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	attr, value, err := parseEquality(*params.KeyConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	var matches []Item
	for _, item := range f.table(*params.TableName) {
		if attrEqual(item[attr], value) {
			matches = append(matches, copyItem(item))
		}
	}

	keyAttrs := f.keys[*params.TableName]
	if len(keyAttrs) == 2 {
		sortAttr := keyAttrs[1]
		descending := params.ScanIndexForward != nil && !*params.ScanIndexForward
		sort.Slice(matches, func(i, j int) bool {
			a := stringAttr(matches[i][sortAttr])
			b := stringAttr(matches[j][sortAttr])
			if descending {
				return a > b
			}
			return a < b
		})
	}

	if params.Limit != nil && int32(len(matches)) > *params.Limit {
		matches = matches[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: matches}, nil
}

func (f *FakeClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []Item
	for _, item := range f.table(*params.TableName) {
		items = append(items, copyItem(item))
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func (f *FakeClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for tableName, requests := range params.RequestItems {
		for _, request := range requests {
			switch {
			case request.DeleteRequest != nil:
				key, err := f.keyOf(tableName, request.DeleteRequest.Key)
				if err != nil {
					return nil, err
				}
				delete(f.table(tableName), key)
			case request.PutRequest != nil:
				key, err := f.keyOf(tableName, request.PutRequest.Item)
				if err != nil {
					return nil, err
				}
				f.table(tableName)[key] = copyItem(request.PutRequest.Item)
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

// TransactWriteItems evaluates every condition against the pre-transaction
// state, then applies all writes, mirroring the all-or-nothing contract.
func (f *FakeClient) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNextTransact {
		f.FailNextTransact = false
		return nil, fmt.Errorf("InternalServerError: injected transaction failure")
	}

	// Phase 1: conditions.
	for _, twi := range params.TransactItems {
		var tableName string
		var itemKey Item
		var condition *string
		var names map[string]string
		var values Item

		switch {
		case twi.Put != nil:
			tableName, itemKey = *twi.Put.TableName, twi.Put.Item
			condition, names, values = twi.Put.ConditionExpression, twi.Put.ExpressionAttributeNames, twi.Put.ExpressionAttributeValues
		case twi.Update != nil:
			tableName, itemKey = *twi.Update.TableName, twi.Update.Key
			condition, names, values = twi.Update.ConditionExpression, twi.Update.ExpressionAttributeNames, twi.Update.ExpressionAttributeValues
		case twi.Delete != nil:
			tableName, itemKey = *twi.Delete.TableName, twi.Delete.Key
			condition, names, values = twi.Delete.ConditionExpression, twi.Delete.ExpressionAttributeNames, twi.Delete.ExpressionAttributeValues
		case twi.ConditionCheck != nil:
			tableName, itemKey = *twi.ConditionCheck.TableName, twi.ConditionCheck.Key
			condition, names, values = twi.ConditionCheck.ConditionExpression, twi.ConditionCheck.ExpressionAttributeNames, twi.ConditionCheck.ExpressionAttributeValues
		default:
			continue
		}

		if condition == nil {
			continue
		}
		key, err := f.keyOf(tableName, itemKey)
		if err != nil {
			return nil, err
		}
		if !evalCondition(*condition, f.table(tableName)[key], names, values) {
			return nil, fmt.Errorf("TransactionCanceledException: ConditionalCheckFailed on table %s", tableName)
		}
	}

	// Phase 2: writes.
	for _, twi := range params.TransactItems {
		switch {
		case twi.Put != nil:
			key, err := f.keyOf(*twi.Put.TableName, twi.Put.Item)
			if err != nil {
				return nil, err
			}
			f.table(*twi.Put.TableName)[key] = copyItem(twi.Put.Item)
		case twi.Update != nil:
			key, err := f.keyOf(*twi.Update.TableName, twi.Update.Key)
			if err != nil {
				return nil, err
			}
			item := applyUpdate(f.table(*twi.Update.TableName)[key], twi.Update.Key,
				*twi.Update.UpdateExpression, twi.Update.ExpressionAttributeNames, twi.Update.ExpressionAttributeValues)
			f.table(*twi.Update.TableName)[key] = item
		case twi.Delete != nil:
			key, err := f.keyOf(*twi.Delete.TableName, twi.Delete.Key)
			if err != nil {
				return nil, err
			}
			delete(f.table(*twi.Delete.TableName), key)
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

// --- expression evaluation ---

func resolveName(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			return resolved
		}
	}
	return name
}

func stringAttr(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func attrEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case nil:
		return b == nil
	}
	return false
}

// parseEquality handles "attr = :value" conditions.
func parseEquality(expr string, names map[string]string, values Item) (string, types.AttributeValue, error) {
	parts := strings.SplitN(expr, "=", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("dynamotest: unsupported condition %q", expr)
	}
	attr := resolveName(strings.TrimSpace(parts[0]), names)
	placeholder := strings.TrimSpace(parts[1])
	value, ok := values[placeholder]
	if !ok {
		return "", nil, fmt.Errorf("dynamotest: missing value %q", placeholder)
	}
	return attr, value, nil
}

// evalCondition handles AND-joined clauses of attribute_exists,
// attribute_not_exists, and equality.
func evalCondition(expr string, item Item, names map[string]string, values Item) bool {
	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "attribute_exists(") && strings.HasSuffix(clause, ")"):
			attr := resolveName(clause[len("attribute_exists(") : len(clause)-1], names)
			if item == nil || item[attr] == nil {
				return false
			}
		case strings.HasPrefix(clause, "attribute_not_exists(") && strings.HasSuffix(clause, ")"):
			attr := resolveName(clause[len("attribute_not_exists(") : len(clause)-1], names)
			if item != nil && item[attr] != nil {
				return false
			}
		default:
			attr, value, err := parseEquality(clause, names, values)
			if err != nil {
				return false
			}
			if item == nil || !attrEqual(item[attr], value) {
				return false
			}
		}
	}
	return true
}

// applyUpdate handles "SET a = :x, b = :y" and "REMOVE attr" expressions,
// creating the item from its key when absent, as DynamoDB does.
func applyUpdate(item Item, key Item, expr string, names map[string]string, values Item) Item {
	if item == nil {
		item = Item{}
		for k, v := range key {
			item[k] = v
		}
	} else {
		item = copyItem(item)
	}

	switch {
	case strings.HasPrefix(expr, "SET "):
		for _, assignment := range strings.Split(expr[len("SET "):], ",") {
			parts := strings.SplitN(assignment, "=", 2)
			if len(parts) != 2 {
				continue
			}
			attr := resolveName(strings.TrimSpace(parts[0]), names)
			placeholder := strings.TrimSpace(parts[1])
			if value, ok := values[placeholder]; ok {
				item[attr] = value
			}
		}
	case strings.HasPrefix(expr, "REMOVE "):
		for _, attr := range strings.Split(expr[len("REMOVE "):], ",") {
			delete(item, resolveName(strings.TrimSpace(attr), names))
		}
	}
	return item
}
