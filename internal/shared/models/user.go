// Модели пользователя, общие для сервера и клиента
package models

// User — единственная хранимая сущность.
//
// ID назначает хранилище при создании, из клиентского ввода он никогда не берётся.
// Password хранится в виде argon2id-хеша.
type User struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// InsertResult — подтверждение вставки: новый идентификатор и признак
// того, что хранилище приняло запись.
type InsertResult struct {
	InsertedID   string `json:"insertedId"`
	Acknowledged bool   `json:"acknowledged"`
}

// UpdateResult — сколько документов нашлось и сколько изменилось.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult — сколько документов удалено.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
