package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// User é o usuário extraído do campo "user" do initData
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Identity é a chave opaca do usuário no ledger e no feed
func (u User) Identity() string {
	return strconv.FormatInt(u.ID, 10)
}

// DisplayName segue a convenção do Mini App: @username, senão o primeiro
// nome, senão "Player"
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Player"
}

// VerifyInitData valida o initData de um Telegram Mini App contra o token do
// bot. A assinatura é HMAC-SHA256 em dois estágios: a chave derivada é
// HMAC("WebAppData", botToken) e o hash esperado é HMAC(chave, string de
// verificação): pares k=v ordenados por chave, separados por \n, excluindo o
// próprio campo hash.
// https://core.telegram.org/bots/webapps#validating-data-received-via-the-mini-app
func VerifyInitData(initData, botToken string) (User, bool) {
	params, err := url.ParseQuery(initData)
	if err != nil {
		return User{}, false
	}

	gotHash := params.Get("hash")
	if gotHash == "" {
		return User{}, false
	}
	params.Del("hash")

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	dataCheckString := strings.Join(pairs, "\n")

	secretKey := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	computed := hex.EncodeToString(hmacSHA256(secretKey, []byte(dataCheckString)))

	if !hmac.Equal([]byte(computed), []byte(gotHash)) {
		return User{}, false
	}

	var user User
	if raw := params.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return User{}, false
		}
	}
	if user.ID == 0 {
		return User{}, false
	}
	return user, true
}

func hmacSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
