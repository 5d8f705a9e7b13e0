package present

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// Message keys. Each key has an English and an Arabic entry in the catalog.
const (
	keyCurrency        = "currency"
	keyInStock         = "results.in_stock"
	keyOutOfStock      = "results.out_of_stock"
	keyCheapest        = "results.cheapest"
	keyPerUnit         = "results.per_unit"
	keyResultsFor      = "search.results_for"
	keyNoResults       = "search.no_results"
	keyNoResultsFor    = "search.no_results_for"
	keyNoResultsHint   = "search.no_results_hint"
	keySuggestions     = "search.suggestions"
	keyPopularSearches = "search.popular_searches"
	keyNoMatches       = "filters.no_matches"
	keyNoMatchesHint   = "filters.no_matches_hint"

	keyColProduct  = "column.product"
	keyColRetailer = "column.retailer"
	keyColPrice    = "column.price"
	keyColPerUnit  = "column.per_unit"
	keyColStock    = "column.stock"
)

type entry struct {
	key, en, ar string
}

var entries = []entry{
	{keyCurrency, "EGP %.2f", "%.2f ج.م."},
	{keyInStock, "In stock", "متوفر"},
	{keyOutOfStock, "Out of stock", "غير متوفر"},
	{keyCheapest, "Cheapest", "الأرخص"},
	{keyPerUnit, "%s per unit", "%s للوحدة"},
	{keyResultsFor, "%[1]d results for \"%[2]s\"", "%[1]d نتيجة لـ \"%[2]s\""},
	{keyNoResults, "No results found", "لم يتم العثور على نتائج"},
	{keyNoResultsFor, "No results for \"%s\"", "لا توجد نتائج لـ \"%s\""},
	{keyNoResultsHint, "Try a different spelling or a more general term", "جرب تهجئة مختلفة أو كلمة أعم"},
	{keySuggestions, "Did you mean", "هل تقصد"},
	{keyPopularSearches, "Popular searches", "عمليات البحث الشائعة"},
	{keyNoMatches, "No offers match the current filters", "لا توجد عروض تطابق عوامل التصفية الحالية"},
	{keyNoMatchesHint, "Widen the price range or clear the retailer and stock filters", "وسّع نطاق السعر أو ألغِ تصفية المتاجر والتوفر"},

	{keyColProduct, "PRODUCT", "المنتج"},
	{keyColRetailer, "RETAILER", "المتجر"},
	{keyColPrice, "PRICE", "السعر"},
	{keyColPerUnit, "PER UNIT", "سعر الوحدة"},
	{keyColStock, "STOCK", "التوفر"},

	{"error.invalid_query.title", "Please enter a search query", "يرجى إدخال كلمة البحث"},
	{"error.invalid_query.hint", "Type a product name, for example rice or oil", "اكتب اسم المنتج، مثل أرز أو زيت"},
	{"error.bad_request.title", "Invalid request", "طلب غير صالح"},
	{"error.bad_request.hint", "Check your search and try again", "راجع البحث وحاول مرة أخرى"},
	{"error.not_found.title", "Service not found", "الخدمة غير متوفرة"},
	{"error.not_found.hint", "The search service is unavailable. Please try again later", "خدمة البحث غير متاحة. يرجى المحاولة لاحقاً"},
	{"error.upstream_timeout.title", "Search timeout", "انتهت مهلة البحث"},
	{"error.upstream_timeout.hint", "Retailers may be temporarily unavailable. Please try again", "قد تكون المتاجر غير متاحة مؤقتاً. حاول مرة أخرى"},
	{"error.rate_limited.title", "Too many requests", "طلبات كثيرة جداً"},
	{"error.rate_limited.hint", "Please wait a moment before searching again", "يرجى الانتظار قليلاً قبل البحث مرة أخرى"},
	{"error.server_error.title", "Server error", "خطأ في الخادم"},
	{"error.server_error.hint", "Please try again later", "يرجى المحاولة لاحقاً"},
	{"error.network_error.title", "Network error", "خطأ في الشبكة"},
	{"error.network_error.hint", "Check your internet connection and try again", "تحقق من اتصالك بالإنترنت وحاول مرة أخرى"},
	{"error.client_timeout.title", "Request timed out", "انتهت مهلة الطلب"},
	{"error.client_timeout.hint", "Search is taking longer than usual. Please try again", "البحث يستغرق وقتاً أطول من المعتاد. حاول مرة أخرى"},
	{"error.unknown_error.title", "Search error", "خطأ في البحث"},
	{"error.unknown_error.hint", "Something went wrong. Please try again later", "حدث خطأ ما. يرجى المحاولة لاحقاً"},
}

var cat = mustCatalog()

func mustCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, e := range entries {
		if err := b.SetString(language.English, e.key, e.en); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Arabic, e.key, e.ar); err != nil {
			panic(err)
		}
	}
	return b
}

func tag(lang domain.Language) language.Tag {
	if lang == domain.LanguageEnglish {
		return language.English
	}
	return language.Arabic
}

// printer returns a localized printer. Printers are not safe for concurrent
// use, so each call builds its own.
func printer(lang domain.Language) *message.Printer {
	return message.NewPrinter(tag(lang), message.Catalog(cat))
}
