package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ключи зарегистрированных контрактов ответов
const (
	ListResponse  = "ListResponse/1.0.0"
	LoginResponse = "LoginResponse/1.0.0"
	StatsResponse = "StatsResponse/1.0.0"
)

//go:embed responses
var schemasFS embed.FS

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Добавляем все схемы как ресурсы
	// Это нужно, чтобы схемы могли ссылаться друг на друга через `$ref`
	err := fs.WalkDir(schemasFS, "responses", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			file, _ := schemasFS.Open(path)
			defer file.Close()
			if err := compiler.AddResource(path, file); err != nil {
				log.Fatalf("failed to add schema resource %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("error walking and adding schema resources: %v", err)
	}

	// Снова обходим для компиляции и регистрации
	err = fs.WalkDir(schemasFS, "responses", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			schema, err := compiler.Compile(path)
			if err != nil {
				log.Printf("WARNING: could not compile schema %s: %v. Skipping.", path, err)
				return nil
			}

			key := generateKeyFromPath(path)
			compiledSchemas[key] = schema
		}
		return nil
	})
	if err != nil {
		log.Fatalf("error walking and compiling schemas: %v", err)
	}
}

// generateKeyFromPath преобразует путь вида "responses/list-response/v1.json"
// в ключ вида "ListResponse/1.0.0".
func generateKeyFromPath(path string) string {
	trimmedPath := strings.TrimPrefix(path, "responses/")
	trimmedPath = strings.TrimSuffix(trimmedPath, ".json")

	parts := strings.Split(trimmedPath, "/")
	if len(parts) != 2 {
		return "" // Некорректный путь, возвращаем пустой ключ
	}

	caser := cases.Title(language.English)

	nameParts := strings.Split(parts[0], "-")
	var nameBuilder strings.Builder
	for _, p := range nameParts {
		nameBuilder.WriteString(caser.String(p))
	}
	name := nameBuilder.String()

	version := strings.Replace(parts[1], "v", "", 1) + ".0.0"

	return fmt.Sprintf("%s/%s", name, version)
}

// Validate проверяет JSON-документ на соответствие зарегистрированному контракту.
// Используется клиентом API для защиты от неожиданной формы ответа.
func Validate(contractKey string, document []byte) error {
	schema, ok := compiledSchemas[contractKey]
	if !ok {
		return fmt.Errorf("no schema registered for contract %q", contractKey)
	}

	var value interface{}
	if err := json.Unmarshal(document, &value); err != nil {
		return fmt.Errorf("contract %q: document is not valid JSON: %w", contractKey, err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("contract %q violated: %w", contractKey, err)
	}
	return nil
}
