package memory

import (
	"context"
	"sync"

	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

type InMemoryAccountRepository struct {
	accounts map[string]*model.MailAccount
	mutex    sync.RWMutex
}

func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[string]*model.MailAccount),
	}
}

func (r *InMemoryAccountRepository) Create(ctx context.Context, account *model.MailAccount) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.accounts[account.ID] = account
	return nil
}

func (r *InMemoryAccountRepository) FindByID(ctx context.Context, id string) (*model.MailAccount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return account, nil
}

func (r *InMemoryAccountRepository) FindByEmail(ctx context.Context, email string) (*model.MailAccount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, account := range r.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *InMemoryAccountRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*model.MailAccount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.MailAccount
	for _, account := range r.accounts {
		if account.OwnerID == ownerID {
			result = append(result, account)
		}
	}
	return result, nil
}

func (r *InMemoryAccountRepository) FindAll(ctx context.Context) ([]*model.MailAccount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.MailAccount
	for _, account := range r.accounts {
		result = append(result, account)
	}
	return result, nil
}

func (r *InMemoryAccountRepository) Update(ctx context.Context, account *model.MailAccount) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.accounts[account.ID]; !exists {
		return repository.ErrNotFound
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *InMemoryAccountRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.accounts, id)
	return nil
}

// Category repository implementation
type InMemoryCategoryRepository struct {
	categories map[string]*model.Category
	mutex      sync.RWMutex
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{
		categories: make(map[string]*model.Category),
	}
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.categories[category.ID] = category
	return nil
}

func (r *InMemoryCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	category, exists := r.categories[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return category, nil
}

func (r *InMemoryCategoryRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*model.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Category
	for _, category := range r.categories {
		if category.OwnerID == ownerID {
			result = append(result, category)
		}
	}
	return result, nil
}

func (r *InMemoryCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.categories[category.ID]; !exists {
		return repository.ErrNotFound
	}
	r.categories[category.ID] = category
	return nil
}

func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.categories, id)
	return nil
}

// Message repository implementation
type InMemoryMessageRepository struct {
	messages map[string]*model.Message
	mutex    sync.RWMutex
}

func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{
		messages: make(map[string]*model.Message),
	}
}

func (r *InMemoryMessageRepository) Create(ctx context.Context, message *model.Message) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.messages[message.ID] = message
	return nil
}

func (r *InMemoryMessageRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.messages[id]
	return exists, nil
}

func (r *InMemoryMessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	message, exists := r.messages[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return message, nil
}

func (r *InMemoryMessageRepository) FindByAccountID(ctx context.Context, accountID string) ([]*model.Message, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Message
	for _, message := range r.messages {
		if message.AccountID == accountID {
			result = append(result, message)
		}
	}
	return result, nil
}

func (r *InMemoryMessageRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*model.Message, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Message
	for _, message := range r.messages {
		if message.OwnerID == ownerID {
			result = append(result, message)
		}
	}
	return result, nil
}

func (r *InMemoryMessageRepository) FindByCategoryID(ctx context.Context, categoryID string) ([]*model.Message, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Message
	for _, message := range r.messages {
		if message.CategoryID == categoryID {
			result = append(result, message)
		}
	}
	return result, nil
}

func (r *InMemoryMessageRepository) UpdateCategory(ctx context.Context, id, categoryID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	message, exists := r.messages[id]
	if !exists {
		return repository.ErrNotFound
	}
	message.CategoryID = categoryID
	return nil
}

func (r *InMemoryMessageRepository) Update(ctx context.Context, message *model.Message) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.messages[message.ID]; !exists {
		return repository.ErrNotFound
	}
	r.messages[message.ID] = message
	return nil
}

func (r *InMemoryMessageRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.messages, id)
	return nil
}
