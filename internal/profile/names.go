package profile

// Tags of the built-in REST profile.
const (
	TagAPI            = "RestProfile::Api"
	TagResource       = "RestProfile::Resource"
	TagHTTPMethod     = "RestProfile::HttpMethod"
	TagGet            = "RestProfile::Get"
	TagPost           = "RestProfile::Post"
	TagPut            = "RestProfile::Put"
	TagPatch          = "RestProfile::Patch"
	TagDelete         = "RestProfile::Delete"
	TagHead           = "RestProfile::Head"
	TagOptions        = "RestProfile::Options"
	TagResourcePath   = "RestProfile::ResourcePath"
	TagHTTPResponse   = "RestProfile::HttpResponse"
	TagHTTPRequest    = "RestProfile::HttpRequest"
	TagQueryParameter = "RestProfile::QueryParameter"
)

// Tags of the built-in RAML profile.
const (
	TagRAMLAPI       = "RamlProfile::RamlApi"
	TagAPIModel      = "RamlProfile::ApiModel"
	TagFacetedScalar = "RamlProfile::FacetedScalar"
	TagJSONSchema    = "RamlProfile::JsonSchema"
	TagXMLSchema     = "RamlProfile::XmlSchema"
	TagFacetedNumber = "RamlProfile::FacetedNumber"
	TagFacetedString = "RamlProfile::FacetedString"
	TagFacetedFile   = "RamlProfile::FacetedFile"
)

// Qualified name prefixes of the built-in type libraries.
const (
	PrimitiveTypesPrefix = "PrimitiveTypes::"
	RAMLTypesPrefix      = "RamlProfile::RamlTypes::"
)

// Property names shared by the built-in tags.
const (
	PropTitle             = "title"
	PropVersion           = "version"
	PropBaseURI           = "baseUri"
	PropBaseURIParameters = "baseUriParameters"
	PropProtocols         = "protocols"
	PropMediaType         = "mediaType"
	PropDocumentation     = "documentation"
	PropDescription       = "description"
	PropSecuritySchemes   = "securitySchemes"
	PropSecuredBy         = "securedBy"
	PropTypes             = "types"
	PropTraits            = "traits"
	PropResourceTypes     = "resourceTypes"
	PropUses              = "uses"

	PropPath            = "path"
	PropIs              = "is"
	PropType            = "type"
	PropQueryParameters = "queryParameters"
	PropStatusCode      = "statusCode"

	PropSchema   = "schema"
	PropDefault  = "default"
	PropExample  = "example"
	PropExamples = "examples"

	PropMinimum    = "minimum"
	PropMaximum    = "maximum"
	PropFormat     = "format"
	PropMultipleOf = "multipleOf"
	PropPattern    = "pattern"
	PropMinLength  = "minLength"
	PropMaxLength  = "maxLength"
	PropEnum       = "enum"
	PropFileTypes  = "fileTypes"
)

// NumberFormats lists the literals accepted by the FacetedNumber format property.
var NumberFormats = []string{"int8", "int16", "int32", "int64", "int", "long", "float", "double"}
